package ai

import (
	"context"

	"github.com/spigell/resume-scorer/internal/result"
	"github.com/spigell/resume-scorer/internal/scorer"
)

// ReviewInput is what a reviewer sees: the raw score, its interpretation and the job text.
type ReviewInput struct {
	Candidate      string
	JobDescription string
	Response       *scorer.ScoreResponse
	View           result.ViewState
}

// ReviewNote is a short recruiter-facing comment on a score.
type ReviewNote struct {
	Summary   string
	Strengths []string
	Gaps      []string
	Raw       string
}

type Reviewer interface {
	Review(ctx context.Context, in ReviewInput) (*ReviewNote, error)
}
