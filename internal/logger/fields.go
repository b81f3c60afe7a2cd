package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldService is the structured log field key for the remote service name.
	FieldService = "service"
	// FieldTalentID is the structured log field key for the talent identifier.
	FieldTalentID = "talent_id"
	// FieldJobID is the structured log field key for the job identifier.
	FieldJobID = "job_id"
	// FieldGeneration is the structured log field key for a bootstrap generation.
	FieldGeneration = "generation"
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
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// TalentFields returns the fields identifying a talent and, optionally, a job.
func TalentFields(talentID, jobID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldTalentID, Value: talentID},
		StringField{Key: FieldJobID, Value: jobID},
	)
}

// WithService attaches the remote service name to the provided logger.
func WithService(logger *zap.Logger, service string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldService, Value: service})...)
}
