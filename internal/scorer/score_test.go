package scorer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const validScoreBody = `{
	"score": 78,
	"top_keywords": ["go", "kubernetes"],
	"skills_matched": ["go"],
	"years_experience": 5.0,
	"resume_char_count": 1200,
	"job_char_count": 52,
	"method_used": "keyword"
}`

func testResume(size int) *ResumeFile {
	data := bytes.Repeat([]byte("a"), size)
	return &ResumeFile{Name: "jane_doe.pdf", Size: int64(len(data)), Data: data}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(zap.NewNop(), srv.URL), srv
}

func TestSubmitSuccess(t *testing.T) {
	var (
		gotResume  []byte
		gotName    string
		gotJob     string
		gotQuery   string
		gotReqID   string
		gotPath    string
		gotMethod  string
		parseError error
	)

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		gotReqID = r.Header.Get(requestIDHeader)

		if parseError = r.ParseMultipartForm(1 << 20); parseError != nil {
			http.Error(w, parseError.Error(), http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("resume")
		if err != nil {
			parseError = err
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		gotName = header.Filename
		gotResume, _ = io.ReadAll(file)
		gotJob = r.FormValue("job_description")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, validScoreBody)
	})

	req := ScoreRequest{
		Resume:         testResume(50 * 1024),
		JobDescription: "Senior backend engineer, 5 years Go experience",
	}

	outcome := client.Submit(context.Background(), req)
	if parseError != nil {
		t.Fatalf("server could not parse request: %v", parseError)
	}
	if !outcome.OK() {
		t.Fatalf("expected success, got %v", outcome.Err)
	}

	if gotMethod != http.MethodPost || gotPath != "/score" {
		t.Fatalf("unexpected request line: %s %s", gotMethod, gotPath)
	}
	if gotQuery != "" {
		t.Fatalf("expected no query without semantic matching, got %q", gotQuery)
	}
	if gotReqID == "" {
		t.Fatalf("expected request id header")
	}
	if gotName != "jane_doe.pdf" || len(gotResume) != 50*1024 {
		t.Fatalf("unexpected resume part: name=%q size=%d", gotName, len(gotResume))
	}
	if gotJob != req.JobDescription {
		t.Fatalf("unexpected job description: %q", gotJob)
	}

	resp := outcome.Response
	if resp.Score != 78 || resp.MethodUsed != "keyword" || resp.ResumeCharCount != 1200 || resp.JobCharCount != 52 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.TopKeywords) != 2 || resp.TopKeywords[0] != "go" || resp.TopKeywords[1] != "kubernetes" {
		t.Fatalf("keyword order not preserved: %v", resp.TopKeywords)
	}
	if resp.Explanation != "" {
		t.Fatalf("expected empty explanation, got %q", resp.Explanation)
	}
}

func TestSubmitSemanticFlag(t *testing.T) {
	var query string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("use_bert")
		fmt.Fprint(w, validScoreBody)
	})

	outcome := client.Submit(context.Background(), ScoreRequest{
		Resume:              testResume(10),
		JobDescription:      "Go developer",
		UseSemanticMatching: true,
	})
	if !outcome.OK() {
		t.Fatalf("expected success, got %v", outcome.Err)
	}
	if query != "true" {
		t.Fatalf("expected use_bert=true, got %q", query)
	}
}

func TestSubmitServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "structured detail", status: http.StatusUnprocessableEntity, body: `{"detail":"bad file"}`, message: "bad file"},
		{name: "unparsable body", status: http.StatusUnprocessableEntity, body: `<html>oops</html>`, message: "Request failed (422)"},
		{name: "empty detail", status: http.StatusBadRequest, body: `{"detail":""}`, message: "Request failed (400)"},
		{name: "validation error list", status: http.StatusUnprocessableEntity, body: `{"detail":[{"loc":["body","resume"],"msg":"field required"}]}`, message: "Request failed (422)"},
		{name: "empty body", status: http.StatusInternalServerError, body: ``, message: "Request failed (500)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			outcome := client.Submit(context.Background(), ScoreRequest{Resume: testResume(10), JobDescription: "Go"})
			if got := hits.Load(); got != 1 {
				t.Fatalf("expected exactly one request, got %d", got)
			}
			if outcome.Response != nil {
				t.Fatalf("expected no response on failure")
			}
			if outcome.Err == nil {
				t.Fatalf("expected failure")
			}
			if outcome.Err.Kind != KindServerError {
				t.Fatalf("expected server error, got %s", outcome.Err.Kind)
			}
			if outcome.Err.StatusCode != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, outcome.Err.StatusCode)
			}
			if outcome.Err.Detail != tt.message || outcome.Err.Error() != tt.message {
				t.Fatalf("expected message %q, got detail=%q message=%q", tt.message, outcome.Err.Detail, outcome.Err.Error())
			}
			if !errors.Is(outcome.Err, ErrServer) {
				t.Fatalf("expected errors.Is ErrServer")
			}
		})
	}
}

func TestSubmitMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing score", body: `{"top_keywords":[],"skills_matched":[],"years_experience":1,"resume_char_count":1,"job_char_count":1,"method_used":"tfidf"}`},
		{name: "missing several", body: `{"score": 90}`},
		{name: "null score", body: `{"score":null,"top_keywords":[],"skills_matched":[],"years_experience":1,"resume_char_count":1,"job_char_count":1,"method_used":"tfidf"}`},
		{name: "not json", body: `score: 90`},
		{name: "array", body: `[]`},
		{name: "wrong type", body: `{"score":"high","top_keywords":[],"skills_matched":[],"years_experience":1,"resume_char_count":1,"job_char_count":1,"method_used":"tfidf"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			})

			outcome := client.Submit(context.Background(), ScoreRequest{Resume: testResume(10), JobDescription: "Go"})
			if outcome.Response != nil {
				t.Fatalf("expected no partially populated response, got %+v", outcome.Response)
			}
			if outcome.Err == nil || outcome.Err.Kind != KindMalformedResponse {
				t.Fatalf("expected malformed response, got %+v", outcome.Err)
			}
			if !errors.Is(outcome.Err, ErrMalformedResponse) {
				t.Fatalf("expected errors.Is ErrMalformedResponse")
			}
		})
	}
}

func TestSubmitAcceptsZeroValues(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"score":0,"top_keywords":[],"skills_matched":[],"years_experience":0,"resume_char_count":0,"job_char_count":0,"method_used":"","explanation":null}`)
	})

	outcome := client.Submit(context.Background(), ScoreRequest{Resume: testResume(1), JobDescription: "Go"})
	if !outcome.OK() {
		t.Fatalf("expected zero values to be accepted, got %v", outcome.Err)
	}
	if outcome.Response.Score != 0 || len(outcome.Response.SkillsMatched) != 0 {
		t.Fatalf("unexpected response: %+v", outcome.Response)
	}
}

func TestSubmitTimeout(t *testing.T) {
	release := make(chan struct{})
	var hits atomic.Int32
	client, srv := newTestClient(t, func(_ http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	t.Cleanup(func() { close(release) })

	client.Timeout = 50 * time.Millisecond

	done := make(chan Outcome, 1)
	go func() {
		done <- client.Submit(context.Background(), ScoreRequest{Resume: testResume(10), JobDescription: "Go"})
	}()

	var outcome Outcome
	select {
	case outcome = <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("submit did not honour its deadline")
	}

	if outcome.Response != nil {
		t.Fatalf("timeout must never resolve to success")
	}
	if outcome.Err == nil || outcome.Err.Kind != KindTimeout {
		t.Fatalf("expected timeout, got %+v", outcome.Err)
	}
	if !errors.Is(outcome.Err, ErrTimeout) || !errors.Is(outcome.Err, context.DeadlineExceeded) {
		t.Fatalf("expected timeout error chain, got %v", outcome.Err.Err)
	}
	if !strings.Contains(outcome.Err.Message, srv.URL) {
		t.Fatalf("expected backend address in message, got %q", outcome.Err.Message)
	}
	if outcome.Err.RequestID == "" {
		t.Fatalf("expected request id on error")
	}
	if !strings.Contains(outcome.Err.Message, "50ms") {
		t.Fatalf("expected client deadline in message, got %q", outcome.Err.Message)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected exactly one request, got %d", got)
	}
}

func TestSubmitCallerDeadline(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	outcome := client.Submit(ctx, ScoreRequest{Resume: testResume(10), JobDescription: "Go"})
	if outcome.Err == nil || outcome.Err.Kind != KindTimeout {
		t.Fatalf("expected timeout, got %+v", outcome.Err)
	}
	if strings.Contains(outcome.Err.Message, DefaultTimeout.String()) {
		t.Fatalf("message must not name the client deadline when the caller's fired: %q", outcome.Err.Message)
	}
	if !strings.Contains(outcome.Err.Message, "request deadline") {
		t.Fatalf("unexpected message: %q", outcome.Err.Message)
	}
}

func TestSubmitUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client := New(zap.NewNop(), addr)
	outcome := client.Submit(context.Background(), ScoreRequest{Resume: testResume(10), JobDescription: "Go"})

	if outcome.Err == nil || outcome.Err.Kind != KindNetworkUnreachable {
		t.Fatalf("expected network unreachable, got %+v", outcome.Err)
	}
	if errors.Is(outcome.Err, ErrTimeout) {
		t.Fatalf("connection refusal is not a timeout")
	}
	want := fmt.Sprintf("Could not reach backend at %s.", addr)
	if !strings.HasPrefix(outcome.Err.Message, want) {
		t.Fatalf("expected message to start with %q, got %q", want, outcome.Err.Message)
	}
}

func TestSubmitLogsFailureKind(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"detail":"Only PDF and DOCX files are supported"}`)
	}))
	defer srv.Close()

	client := New(zap.New(core), srv.URL)
	client.Submit(context.Background(), ScoreRequest{Resume: testResume(10), JobDescription: "Go"})

	entries := observed.FilterMessage("scoring failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 failure entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["kind"] != "server_error" {
		t.Fatalf("unexpected kind: %v", ctx["kind"])
	}
	if ctx["backend"] != srv.URL {
		t.Fatalf("unexpected backend: %v", ctx["backend"])
	}
	if ctx["request_id"] == "" {
		t.Fatalf("expected request id")
	}
}

func TestSubmittable(t *testing.T) {
	tests := []struct {
		name string
		req  ScoreRequest
		want bool
	}{
		{name: "complete", req: ScoreRequest{Resume: testResume(1), JobDescription: "Go"}, want: true},
		{name: "no file", req: ScoreRequest{JobDescription: "Go"}, want: false},
		{name: "blank description", req: ScoreRequest{Resume: testResume(1), JobDescription: " \n\t "}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.Submittable(); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestOutcomeResult(t *testing.T) {
	resp, err := failure(malformedError("x", nil)).Result()
	if resp != nil || err == nil {
		t.Fatalf("expected error only, got %v %v", resp, err)
	}

	resp, err = success(&ScoreResponse{Score: 1}).Result()
	if err != nil || resp == nil {
		t.Fatalf("expected response only, got %v %v", resp, err)
	}
}
