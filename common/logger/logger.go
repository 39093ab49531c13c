package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package-level logging facade for the resolution pipeline. Components log
// through Debugf/Infof/Warnf/Errorf; tests can lower the level without
// touching call sites.

var (
	base  *zap.SugaredLogger
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	lg, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		lg = zap.NewNop()
	}
	base = lg.Sugar()
}

// SetLevel sets the minimum level for the whole process.
func SetLevel(l zapcore.Level) { level.SetLevel(l) }

// Quiet raises the threshold to Error; used by tests.
func Quiet() { level.SetLevel(zapcore.ErrorLevel) }

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) { base.Debugf(format, args...) }

// Infof logs an info message.
func Infof(format string, args ...interface{}) { base.Infof(format, args...) }

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) { base.Warnf(format, args...) }

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) { base.Errorf(format, args...) }
