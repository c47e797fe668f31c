package internal

import (
	"go.uber.org/zap"
)

// Logger is the narrow leveled-logging interface used throughout the module.
// Keeping it narrow lets callers supply any backend (or NopLogger) without
// pulling zap into their own dependency graph.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	// With returns a logger that attaches the given key/value pairs to every
	// subsequent call. Implementations that don't support structured fields
	// may ignore the pairs and return themselves.
	With(keysAndValues ...any) Logger
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
func (l nopLogger) With(...any) Logger  { return l }

// NopLogger returns a Logger that discards everything. It is the default
// when a caller doesn't supply one.
func NopLogger() Logger {
	return nopLogger{}
}

// ZapLogger adapts a *zap.SugaredLogger to the Logger interface.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a production zap logger (JSON, info level by default)
// and wraps it as a Logger.
func NewZapLogger() (Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: l.Sugar()}, nil
}

// NewDevelopmentLogger builds a human-readable console logger, useful for the
// cmd/ demos and local debugging.
func NewDevelopmentLogger() (Logger, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: l.Sugar()}, nil
}

// NewConsoleLogger builds a human-readable logger for the cmd/ demo
// binaries. Falls back to NopLogger if zap's development config can't be
// constructed (an unconfigurable process stdout, in practice never).
func NewConsoleLogger() Logger {
	l, err := NewDevelopmentLogger()
	if err != nil {
		return NopLogger()
	}
	return l
}

func (l *ZapLogger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *ZapLogger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *ZapLogger) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *ZapLogger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }

func (l *ZapLogger) With(keysAndValues ...any) Logger {
	return &ZapLogger{sugar: l.sugar.With(keysAndValues...)}
}
