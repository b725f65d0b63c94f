package logger

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field represents a structured log field.
type Field = zap.Field

// String constructs a field with a string value.
func String(key string, val string) Field {
	return zap.String(key, val)
}

// Int constructs a field with an integer value.
func Int(key string, val int) Field {
	return zap.Int(key, val)
}

// Bool constructs a field with a boolean value.
func Bool(key string, val bool) Field {
	return zap.Bool(key, val)
}

// Duration constructs a field with a time.Duration value.
func Duration(key string, val time.Duration) Field {
	return zap.Duration(key, val)
}

// Strings constructs a field with a string slice value.
func Strings(key string, val []string) Field {
	return zap.Strings(key, val)
}

// Error constructs a field with an error value.
func Error(err error) Field {
	return zap.Error(err)
}

// Any constructs a field with any value using reflection.
func Any(key string, val interface{}) Field {
	return zap.Any(key, val)
}

// Common field constructors for request context.

// RequestID constructs a request_id field.
func RequestID(id string) Field {
	return String("request_id", id)
}

// Method constructs an HTTP method field.
func Method(method string) Field {
	return String("method", method)
}

// Path constructs an HTTP path field.
func Path(path string) Field {
	return String("path", path)
}

// Status constructs an HTTP status code field.
func Status(code int) Field {
	return Int("status", code)
}

// Latency constructs a latency field from duration.
func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

// ClientIP constructs a client_ip field.
func ClientIP(ip string) Field {
	return String("client_ip", ip)
}

// Host constructs a host field.
func Host(host string) Field {
	return String("host", host)
}

// RunID constructs a run_id field.
func RunID(id string) Field {
	return String("run_id", id)
}

// Component constructs a component field for identifying log source.
func Component(name string) Field {
	return String("component", name)
}

// parseLevel converts a string level to zapcore.Level.
func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
