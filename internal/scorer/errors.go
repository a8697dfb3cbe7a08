package scorer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a failed submission.
type Kind int

const (
	KindNetworkUnreachable Kind = iota + 1
	KindTimeout
	KindServerError
	KindMalformedResponse
)

func (k Kind) String() string {
	switch k {
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindTimeout:
		return "timeout"
	case KindServerError:
		return "server_error"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Sentinels matched by ClientError.Is.
var (
	ErrNetworkUnreachable = errors.New("scoring service unreachable")
	ErrTimeout            = errors.New("scoring service timed out")
	ErrServer             = errors.New("scoring service returned an error")
	ErrMalformedResponse  = errors.New("scoring service returned a malformed response")
)

// ClientError is the single error type produced by a failed call to the scoring service.
type ClientError struct {
	Kind Kind
	// StatusCode and Detail are set for KindServerError only.
	StatusCode int
	Detail     string
	Message    string
	RequestID  string
	Err        error
}

func (e *ClientError) Error() string {
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
// A timeout also matches ErrNetworkUnreachable.
func (e *ClientError) Is(target error) bool {
	switch target {
	case ErrNetworkUnreachable:
		return e.Kind == KindNetworkUnreachable || e.Kind == KindTimeout
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrServer:
		return e.Kind == KindServerError
	case ErrMalformedResponse:
		return e.Kind == KindMalformedResponse
	}
	return false
}

type errorBody struct {
	Detail string `json:"detail"`
}

func unreachableError(backend string, err error) *ClientError {
	return &ClientError{
		Kind:    KindNetworkUnreachable,
		Message: fmt.Sprintf("Could not reach backend at %s. Make sure it's running and accessible.", backend),
		Err:     err,
	}
}

// timeoutError names the deadline when it is known; zero means the caller's context expired.
func timeoutError(backend string, timeout time.Duration, err error) *ClientError {
	message := fmt.Sprintf("Backend at %s did not respond before the request deadline. It may be overloaded or unreachable.", backend)
	if timeout > 0 {
		message = fmt.Sprintf("Backend at %s did not respond within %s. It may be overloaded or unreachable.", backend, timeout)
	}

	return &ClientError{
		Kind:    KindTimeout,
		Message: message,
		Err:     err,
	}
}

// serverError builds the error for a non-2xx reply. A body of the form
// {"detail": "..."} supplies the message; anything else falls back to the status code.
func serverError(status int, body []byte) *ClientError {
	fallback := fmt.Sprintf("Request failed (%d)", status)

	e := &ClientError{
		Kind:       KindServerError,
		StatusCode: status,
		Detail:     fallback,
		Message:    fallback,
		Err:        fmt.Errorf("%w: %d %s", ErrServer, status, http.StatusText(status)),
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Detail == "" {
		return e
	}

	e.Detail = parsed.Detail
	e.Message = parsed.Detail
	return e
}

func malformedError(reason string, err error) *ClientError {
	return &ClientError{
		Kind:    KindMalformedResponse,
		Message: fmt.Sprintf("Unexpected response from backend: %s", reason),
		Err:     err,
	}
}
