package scorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

var errConfigFetch = errors.New("failed to fetch config")

// RuntimeConfig holds the feature flags the scoring service exposes to clients.
type RuntimeConfig struct {
	EnableGPT5 bool `mapstructure:"enable_gpt5"`
	// Raw keeps every key the service returned.
	Raw map[string]any `mapstructure:"-"`
}

// Health reports whether the scoring service answers /health with a 2xx status.
// Transport failures count as unhealthy. The body is not inspected.
func (c *Client) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	status, _, err := c.get(ctx, healthPath, uuid.NewString())
	if err != nil {
		c.logger.Debug("health check failed", zap.String("backend", c.APIURL), zap.Error(err))
		return false
	}

	return isSuccess(status)
}

// Config fetches the runtime feature flags from the scoring service.
func (c *Client) Config(ctx context.Context) (*RuntimeConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	status, data, err := c.get(ctx, configPath, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfigFetch, err)
	}

	if !isSuccess(status) {
		return nil, fmt.Errorf("%w: status %d", errConfigFetch, status)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg := &RuntimeConfig{Raw: raw}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Raw == nil {
		cfg.Raw = make(map[string]any)
	}

	return cfg, nil
}
