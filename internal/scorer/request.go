package scorer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	requestIDHeader = "X-Request-ID"
)

// endpoint appends path to the configured base address.
func (c *Client) endpoint(path string, q url.Values) (string, error) {
	u, err := url.Parse(c.APIURL + path)
	if err != nil {
		return "", fmt.Errorf("parsing backend address %q: %w", c.APIURL, err)
	}

	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// multipartBody encodes the resume bytes and the job description as form parts.
func multipartBody(resume *ResumeFile, jobDescription string) (*bytes.Buffer, string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	name, data := "", []byte(nil)
	if resume != nil {
		name, data = resume.Name, resume.Data
	}

	part, err := w.CreateFormFile(resumeField, name)
	if err != nil {
		return nil, "", err
	}

	if _, err = io.Copy(part, bytes.NewReader(data)); err != nil {
		return nil, "", err
	}

	if err = w.WriteField(jobDescriptionField, jobDescription); err != nil {
		return nil, "", err
	}

	if err = w.Close(); err != nil {
		return nil, "", err
	}

	return &b, w.FormDataContentType(), nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", req.Header.Get(requestIDHeader)),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request, requestID string) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	if requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}

	return req
}

// get issues a GET against path and returns the status code and body.
func (c *Client) get(ctx context.Context, path, requestID string) (int, []byte, error) {
	target, err := c.endpoint(path, nil)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.request(c.setHeaders(req, requestID))
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	return resp.StatusCode, data, nil
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func deadlineExceeded(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}
