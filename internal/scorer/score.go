package scorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/resume-scorer/internal/logger"
	"github.com/spigell/resume-scorer/internal/utils"
)

const maxLogLength = 200

// ScoreRequest is a single submission to the scoring service.
type ScoreRequest struct {
	Resume              *ResumeFile
	JobDescription      string
	UseSemanticMatching bool
}

// Submittable reports whether the request carries a resume and a non-blank job description.
// Submit does not check it; callers do before submitting.
func (r ScoreRequest) Submittable() bool {
	return r.Resume != nil && strings.TrimSpace(r.JobDescription) != ""
}

// ScoreResponse is the scoring service reply. Treat it as read-only once received.
type ScoreResponse struct {
	Score float64 `json:"score"`
	// TopKeywords is ordered by importance.
	TopKeywords     []string `json:"top_keywords"`
	SkillsMatched   []string `json:"skills_matched"`
	YearsExperience float64  `json:"years_experience"`
	ResumeCharCount int      `json:"resume_char_count"`
	JobCharCount    int      `json:"job_char_count"`
	MethodUsed      string   `json:"method_used"`
	Explanation     string   `json:"explanation,omitempty"`
}

// scorePayload mirrors ScoreResponse with pointers so absent fields can be told apart from zero values.
type scorePayload struct {
	Score           *float64 `json:"score" validate:"required"`
	TopKeywords     []string `json:"top_keywords" validate:"required"`
	SkillsMatched   []string `json:"skills_matched" validate:"required"`
	YearsExperience *float64 `json:"years_experience" validate:"required"`
	ResumeCharCount *int     `json:"resume_char_count" validate:"required"`
	JobCharCount    *int     `json:"job_char_count" validate:"required"`
	MethodUsed      *string  `json:"method_used" validate:"required"`
	Explanation     *string  `json:"explanation"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeScoreResponse parses a score payload. Every field except explanation must be present.
func DecodeScoreResponse(data []byte) (*ScoreResponse, error) {
	var payload scorePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decoding score response: %w", err)
	}

	if err := validate.Struct(payload); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("validating score response: %w", err)
		}

		missing := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			missing = append(missing, fe.Field())
		}
		return nil, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	resp := &ScoreResponse{
		Score:           *payload.Score,
		TopKeywords:     payload.TopKeywords,
		SkillsMatched:   payload.SkillsMatched,
		YearsExperience: *payload.YearsExperience,
		ResumeCharCount: *payload.ResumeCharCount,
		JobCharCount:    *payload.JobCharCount,
		MethodUsed:      *payload.MethodUsed,
	}
	if payload.Explanation != nil {
		resp.Explanation = *payload.Explanation
	}

	return resp, nil
}

// Outcome holds exactly one of Response or Err.
type Outcome struct {
	Response *ScoreResponse
	Err      *ClientError
}

func success(resp *ScoreResponse) Outcome {
	return Outcome{Response: resp}
}

func failure(err *ClientError) Outcome {
	return Outcome{Err: err}
}

func (o Outcome) OK() bool {
	return o.Err == nil && o.Response != nil
}

// Result unpacks the outcome into the usual Go pair.
func (o Outcome) Result() (*ScoreResponse, error) {
	if o.Err != nil {
		return nil, o.Err
	}
	return o.Response, nil
}

// Submit sends the resume and job description for scoring. It never retries and
// always resolves to an Outcome; the call is aborted once Timeout elapses.
func (c *Client) Submit(ctx context.Context, req ScoreRequest) Outcome {
	requestID := uuid.NewString()
	reqLogger := logger.WithRequest(c.logger, c.APIURL, requestID)

	fields := []zap.Field{zap.Bool("semantic", req.UseSemanticMatching)}
	if req.Resume != nil {
		fields = append(fields, zap.String(logger.FieldResumeFile, req.Resume.Name), zap.Int64("resume_bytes", req.Resume.Size))
	}
	reqLogger.Info("submitting resume for scoring", fields...)

	outcome := c.submit(ctx, req, requestID)
	if outcome.Err != nil {
		outcome.Err.RequestID = requestID
		reqLogger.Warn("scoring failed",
			zap.Stringer("kind", outcome.Err.Kind),
			zap.Int("status", outcome.Err.StatusCode),
			zap.String("message", utils.TruncateForLog(outcome.Err.Message, maxLogLength)),
			zap.NamedError("cause", outcome.Err.Err),
		)
		return outcome
	}

	reqLogger.Info("resume scored",
		zap.Float64("score", outcome.Response.Score),
		zap.String("method", outcome.Response.MethodUsed),
		zap.Int("skills_matched", len(outcome.Response.SkillsMatched)),
	)

	return outcome
}

func (c *Client) submit(ctx context.Context, req ScoreRequest, requestID string) Outcome {
	parent := ctx
	timeout := c.timeout()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	q := url.Values{}
	if req.UseSemanticMatching {
		q.Set(semanticQueryKey, "true")
	}

	target, err := c.endpoint(scorePath, q)
	if err != nil {
		return failure(unreachableError(c.APIURL, err))
	}

	body, formType, err := multipartBody(req.Resume, req.JobDescription)
	if err != nil {
		return failure(unreachableError(c.APIURL, fmt.Errorf("building multipart body: %w", err)))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return failure(unreachableError(c.APIURL, err))
	}

	httpReq = c.setHeaders(httpReq, requestID)
	httpReq.Header.Set("Content-Type", formType)

	resp, err := c.request(httpReq)
	if err != nil {
		if deadlineExceeded(ctx, err) {
			return failure(timeoutError(c.APIURL, firedDeadline(parent, timeout), err))
		}
		return failure(unreachableError(c.APIURL, err))
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return failure(serverError(resp.StatusCode, data))
	}

	if readErr != nil {
		if deadlineExceeded(ctx, readErr) {
			return failure(timeoutError(c.APIURL, firedDeadline(parent, timeout), readErr))
		}
		return failure(malformedError("reading response body", readErr))
	}

	parsed, err := DecodeScoreResponse(data)
	if err != nil {
		return failure(malformedError(err.Error(), err))
	}

	return success(parsed)
}

// firedDeadline is the client deadline, or zero when the caller's own context expired first.
func firedDeadline(parent context.Context, timeout time.Duration) time.Duration {
	if parent.Err() != nil {
		return 0
	}
	return timeout
}
