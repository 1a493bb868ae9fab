// Package logger wraps zap to provide structured logging for the application.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger holds the underlying zap logger.
type Logger struct {
	// Log is the configured zap logger. It is a no-op until Init is called.
	Log *zap.Logger
}

// New returns a Logger with a no-op zap logger, safe to use before Init.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds a production zap logger at the given level ("Debug", "Info",
// "Warn", "Error") and replaces the no-op logger.
func (l *Logger) Init(level string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	l.Log = logger
	return nil
}
