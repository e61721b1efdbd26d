package logger

import (
	"os"
	"quiz-pipeline/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

// Initialize sets up the logger with the given configuration
func Initialize(loggerCfg config.LoggerConfig) error {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var core zapcore.Core
	logLevel := zapcore.InfoLevel
	if loggerCfg.Level == "debug" {
		logLevel = zapcore.DebugLevel
	}

	if loggerCfg.Env == "production" {
		// Production: JSON format
		core = zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(os.Stdout),
			logLevel,
		)
	} else {
		// Development: Console format
		core = zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stdout),
			logLevel,
		)
	}

	log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

// Get returns the global logger instance
func Get() *zap.Logger {
	return log
}

// Sync flushes any buffered log entries
func Sync() error {
	return log.Sync()
}

// Replace swaps the global logger and returns a func that restores the previous one.
func Replace(l *zap.Logger) func() {
	prev := log
	log = l
	return func() { log = prev }
}
