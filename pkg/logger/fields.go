package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field represents a structured log field.
type Field interface {
	// Key returns the field key.
	Key() string

	// ZapField returns the underlying zap.Field.
	ZapField() zap.Field
}

// zapField wraps a zap.Field and implements the Field interface.
type zapField struct {
	field zap.Field
}

func (f zapField) Key() string {
	return f.field.Key
}

func (f zapField) ZapField() zap.Field {
	return f.field
}

// String creates a string field.
func String(key, value string) Field {
	return zapField{zap.String(key, value)}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return zapField{zap.Int(key, value)}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return zapField{zap.Int64(key, value)}
}

// Bool creates a bool field.
func Bool(key string, value bool) Field {
	return zapField{zap.Bool(key, value)}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return zapField{zap.Duration(key, value)}
}

// Strings creates a string-slice field.
func Strings(key string, value []string) Field {
	return zapField{zap.Strings(key, value)}
}

// Any creates a field from an arbitrary value.
func Any(key string, value any) Field {
	return zapField{zap.Any(key, value)}
}

// Error creates an error field.
func Error(err error) Field {
	return zapField{zap.Error(err)}
}

// fieldsToZap converts Field interfaces to zap.Field.
func fieldsToZap(fields []Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, field := range fields {
		zapFields[i] = field.ZapField()
	}

	return zapFields
}
