package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spigell/resume-scorer/internal/ai"
	"github.com/spigell/resume-scorer/internal/ai/gemini"
	"github.com/spigell/resume-scorer/internal/result"
	"github.com/spigell/resume-scorer/internal/scorer"
	"github.com/spigell/resume-scorer/internal/secrets"

	"go.uber.org/zap"
)

// review asks the AI reviewer for a note. It returns (nil, nil) when the feature is
// off locally, when there is no job description to compare against, or when the
// scoring service does not enable it.
func review(ctx context.Context, config *Config, client *scorer.Client, logger *zap.Logger, candidate, jobDescription string, resp *scorer.ScoreResponse, view result.ViewState) (*ai.ReviewNote, error) {
	if config.AI == nil || !config.AI.Enabled {
		return nil, nil
	}

	// The session keeps no job description, so results restored later skip the note.
	if strings.TrimSpace(jobDescription) == "" {
		logger.Debug("reviewer note skipped without a job description")
		return nil, nil
	}

	runtime, err := client.Config(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking backend feature flags: %w", err)
	}

	if !runtime.EnableGPT5 {
		logger.Debug("reviewer note disabled by backend", zap.Bool("enable_gpt5", runtime.EnableGPT5))
		return nil, nil
	}

	reviewer, err := newReviewer(ctx, config.AI, logger)
	if err != nil {
		return nil, err
	}

	return reviewer.Review(ctx, ai.ReviewInput{
		Candidate:      candidate,
		JobDescription: jobDescription,
		Response:       resp,
		View:           view,
	})
}

func newReviewer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Reviewer, error) {
	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	reviewerLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewReviewer(generator, cfg.Gemini.MaxLogLength, reviewerLogger), nil
}

func printNote(w io.Writer, note *ai.ReviewNote) error {
	var b strings.Builder

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Reviewer Note:")
	fmt.Fprintf(&b, "  %s\n", note.Summary)

	if len(note.Strengths) > 0 {
		fmt.Fprintf(&b, "  Strengths: %s\n", strings.Join(note.Strengths, "; "))
	}
	if len(note.Gaps) > 0 {
		fmt.Fprintf(&b, "  Gaps: %s\n", strings.Join(note.Gaps, "; "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
