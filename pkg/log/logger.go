package log

import "time"

// Logger provides structured logging capabilities.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Strings creates a string slice field.
func Strings(key string, value []string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field with key "error".
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Any creates a field with any value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// With returns a Logger that adds a "component" field to every entry.
func With(l Logger, component string) Logger {
	if l == nil {
		return NewNoopLogger()
	}
	return &componentLogger{base: l, field: String("component", component)}
}

type componentLogger struct {
	base  Logger
	field Field
}

func (c *componentLogger) Debug(msg string, fields ...Field) {
	c.base.Debug(msg, append([]Field{c.field}, fields...)...)
}

func (c *componentLogger) Info(msg string, fields ...Field) {
	c.base.Info(msg, append([]Field{c.field}, fields...)...)
}

func (c *componentLogger) Warn(msg string, fields ...Field) {
	c.base.Warn(msg, append([]Field{c.field}, fields...)...)
}

func (c *componentLogger) Error(msg string, fields ...Field) {
	c.base.Error(msg, append([]Field{c.field}, fields...)...)
}
