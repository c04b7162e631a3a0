package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates the engine's zap logger. Development mode gets colored
// console output; production gets JSON with RFC3339 timestamps so log
// lines align with the trade log's date keys.
func New(development bool) (*zap.Logger, error) {
	var cfg zap.Config

	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	}

	return cfg.Build()
}

// Must creates a logger or panics
func Must(development bool) *zap.Logger {
	log, err := New(development)
	if err != nil {
		panic(err)
	}
	return log
}

// WithRun returns a child logger stamped with the decision run id, so
// every line of one cycle can be correlated.
func WithRun(log *zap.Logger, runID string) *zap.Logger {
	if runID == "" {
		return log
	}
	return log.With(zap.String("run_id", runID))
}
