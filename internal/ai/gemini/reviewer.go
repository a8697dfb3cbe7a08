package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/resume-scorer/internal/ai"
	"github.com/spigell/resume-scorer/internal/result"
	"github.com/spigell/resume-scorer/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Reviewer asks Gemini to comment on an existing score.
type Reviewer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewReviewer(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Reviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Reviewer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (r *Reviewer) Review(ctx context.Context, in ai.ReviewInput) (*ai.ReviewNote, error) {
	if in.Response == nil {
		return nil, fmt.Errorf("score response is required")
	}

	scoreJSON, err := json.MarshalIndent(in.Response, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal score payload: %w", err)
	}

	prompt := buildPrompt(in, string(scoreJSON))

	r.logger.Debug("gemini review request",
		zap.String("candidate", in.Candidate),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini review response",
		zap.String("candidate", in.Candidate),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)

	note, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	note.Raw = raw
	return note, nil
}

func buildPrompt(in ai.ReviewInput, scoreJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Candidate: {{CANDIDATE}}\nJob:\n{{JOB_DESCRIPTION}}\n\nScore:\n{{SCORE_JSON}}\n\nJSON Response:"
	}

	job := strings.TrimSpace(in.JobDescription)
	if job == "" {
		job = "(not available)"
	}

	recommendation := result.BadgeBelowThreshold
	if in.View.Recommended {
		recommendation = result.BadgeRecommended
	}

	replacer := strings.NewReplacer(
		"{{CANDIDATE}}", in.Candidate,
		"{{RECOMMENDATION}}", recommendation,
		"{{THRESHOLD}}", strconv.FormatFloat(result.RecommendThreshold, 'f', -1, 64),
		"{{JOB_DESCRIPTION}}", job,
		"{{SCORE_JSON}}", scoreJSON,
	)
	return replacer.Replace(template)
}

func parseResponse(raw string) (*ai.ReviewNote, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	summary := coerceString(data["summary"])
	if summary == "" {
		return nil, fmt.Errorf("parse gemini response: summary is empty")
	}

	return &ai.ReviewNote{
		Summary:   summary,
		Strengths: coerceStrings(data["strengths"]),
		Gaps:      coerceStrings(data["gaps"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	}
	return nil
}
