package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldBackend is the structured log field key for the scoring service base address.
	FieldBackend = "backend"
	// FieldRequestID is the structured log field key for the per-request correlation id.
	FieldRequestID = "request_id"
	// FieldResumeFile is the structured log field key for the submitted resume name.
	FieldResumeFile = "resume_file"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced with a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// RequestFields returns the fields that identify a single call to the scoring service.
// Empty values are dropped.
func RequestFields(backend, requestID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldBackend, Value: backend},
		StringField{Key: FieldRequestID, Value: requestID},
	)
}

// WithRequest attaches the request fields to the provided logger.
func WithRequest(logger *zap.Logger, backend, requestID string) *zap.Logger {
	return WithFields(logger, RequestFields(backend, requestID)...)
}
