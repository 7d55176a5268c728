package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldRunID correlates every entry of a single run.
	FieldRunID = "run_id"
	// FieldPostingID is the structured log field key for the posting identifier.
	FieldPostingID = "posting_id"
	// FieldPostingTitle is the structured log field key for the posting title.
	FieldPostingTitle = "posting_title"
	// FieldCompany is the structured log field key for the hiring company.
	FieldCompany = "company"
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
// A nil logger is replaced with a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// PostingFields returns the fields that identify a posting in log entries.
// Empty values are skipped.
func PostingFields(id, title, company string) []zap.Field {
	return StringFields(
		StringField{Key: FieldPostingID, Value: id},
		StringField{Key: FieldPostingTitle, Value: title},
		StringField{Key: FieldCompany, Value: company},
	)
}
