// Package logging provides leveled, structured logging for the router core.
// It wraps zap behind a small printf-style surface so callers never touch
// the underlying logger directly.
package logging

import (
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger atomic.Pointer[zap.SugaredLogger]

func init() {
	l, _ := newLogger("info")
	logger.Store(l.Sugar())
}

// InitLoggerFromEnv initializes the global logger from the LOG_LEVEL
// environment variable (debug, info, warn, error). Defaults to info.
func InitLoggerFromEnv() (*zap.Logger, error) {
	level := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	return InitLogger(level)
}

// InitLogger initializes the global logger at the given level and replaces
// the previous one atomically. In-flight callers keep the logger they
// already resolved.
func InitLogger(level string) (*zap.Logger, error) {
	l, err := newLogger(level)
	if err != nil {
		return nil, err
	}
	logger.Store(l.Sugar())
	return l, nil
}

func newLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build(zap.AddCallerSkip(1))
}

func Debugf(format string, args ...interface{}) {
	logger.Load().Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	logger.Load().Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	logger.Load().Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	logger.Load().Errorf(format, args...)
}

// Fatalf logs the message and exits the process.
func Fatalf(format string, args ...interface{}) {
	logger.Load().Fatalf(format, args...)
}

// Sync flushes buffered log entries. Call before process exit.
func Sync() {
	_ = logger.Load().Sync()
}
