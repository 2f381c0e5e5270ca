// Package logging builds the zap loggers used by the CLI and the example
// application.
package logging

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sghaida/odi-container/config"
)

// New creates a structured logger for cfg. Production uses JSON output and
// development uses the console encoder; cfg.Log overrides both defaults.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	switch cfg.Environment {
	case config.Production:
		zc = zap.NewProductionConfig()
	default:
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, errors.Wrap(err, "logging: level")
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if cfg.Log.Format != "" {
		zc.Encoding = cfg.Log.Format
	}
	if cfg.Environment == config.Testing {
		zc.OutputPaths = []string{"stderr"}
		zc.DisableStacktrace = true
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "logging: build")
	}
	return logger, nil
}

// Must is New that panics on error, for composition roots.
func Must(cfg *config.Config) *zap.Logger {
	l, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return l
}
