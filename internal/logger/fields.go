package logger

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldReference is the structured log field key for the reference profile id.
	FieldReference = "reference_id"
	// FieldSession is the structured log field key for the interactive session id.
	FieldSession = "session_id"
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

// WithFields attaches the provided fields to the logger.
// A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields returns the fields every session log entry carries.
// A zero reference id and an empty session id are omitted.
func CommonFields(referenceID int64, sessionID string) []zap.Field {
	reference := ""
	if referenceID > 0 {
		reference = strconv.FormatInt(referenceID, 10)
	}

	return StringFields(
		StringField{Key: FieldReference, Value: reference},
		StringField{Key: FieldSession, Value: sessionID},
	)
}

func WithCommonFields(logger *zap.Logger, referenceID int64, sessionID string) *zap.Logger {
	return WithFields(logger, CommonFields(referenceID, sessionID)...)
}
