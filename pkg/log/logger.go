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

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Uint64 creates a uint64 field.
func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a float64 field.
func Float64(key string, value float64) Field {
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

// Run tags a run number.
func Run(run int) Field {
	return Field{Key: "run", Value: run}
}

// Event tags a semantic event number.
func Event(ev uint64) Field {
	return Field{Key: "event", Value: ev}
}

// Entry tags a sequential store position.
func Entry(pos int) Field {
	return Field{Key: "entry", Value: pos}
}

// Path tags a filesystem path.
func Path(p string) Field {
	return Field{Key: "path", Value: p}
}

// Epoch tags a detector epoch.
func Epoch(v int) Field {
	return Field{Key: "version", Value: v}
}
