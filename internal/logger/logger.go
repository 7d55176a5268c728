package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AuditName is the name of the child logger that records admission and
// attempt decisions.
const AuditName = "audit"

// New builds the application logger. Extra files are appended to the
// output paths so the decision log survives the terminal session.
func New(json bool, debug bool, files ...string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}

	if debug {
		level = zapcore.DebugLevel
	}

	outputs := []string{"stdout"}
	for _, file := range files {
		if file != "" {
			outputs = append(outputs, file)
		}
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "step",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			NameKey: "logger",

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}

	return cfg.Build()
}

// Audit returns the named logger used for the decision trail of a run.
func Audit(logger *zap.Logger, runID string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldRunID, Value: runID})...).Named(AuditName)
}
