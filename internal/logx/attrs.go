// Package logx holds the slog attributes and named loggers shared by the
// lifecycle packages.
package logx

import (
	"fmt"
	"log/slog"
	"reflect"
)

// KeyLoggerName is the attribute key carrying the component name.
const KeyLoggerName = "logger"

// Error returns an "error" attribute with the message of err.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// Panic returns a "panic" attribute describing a recovered value.
func Panic(recovered any) slog.Attr {
	return slog.String("panic", fmt.Sprint(recovered))
}

// Type returns an attribute with the name of the given type.
func Type(key string, typ reflect.Type) slog.Attr {
	if typ == nil {
		return slog.String(key, "<nil>")
	}
	return slog.String(key, typ.String())
}

// LoggerName returns an attribute for the logger name.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}

// Named tags base with the component name. A nil base falls back to
// slog.Default() at call time.
func Named(base *slog.Logger, name string) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return base.With(LoggerName(name))
}
