package scorer

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultAPIURL is used when no backend address is configured.
	DefaultAPIURL = "http://localhost:8000"
	// DefaultTimeout bounds every call to the scoring service.
	DefaultTimeout = 20 * time.Second

	userAgent = "spigell/resume-scorer"

	scorePath  = "/score"
	healthPath = "/health"
	configPath = "/config"

	semanticQueryKey    = "use_bert"
	resumeField         = "resume"
	jobDescriptionField = "job_description"
)

// Client talks to the remote scoring service.
// It keeps no per-call state, each call runs under its own deadline.
type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	Timeout    time.Duration
}

func New(logger *zap.Logger, apiURL string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	return &Client{
		logger: logger,
		APIURL: apiURL,
		// Deadlines are enforced per call through the request context.
		HTTPClient: &http.Client{},
		UserAgent:  userAgent,
		Timeout:    DefaultTimeout,
	}
}

func (c *Client) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
