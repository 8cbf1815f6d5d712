// Package logger builds the engine's zap loggers and carries them in contexts.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every entry as the "service" field.
const ServiceName = "matchdex"

var baseConfigs = map[string]func() zap.Config{
	"prod":   productionConfig,
	"local":  zap.NewDevelopmentConfig,
	"dev":    zap.NewDevelopmentConfig,
	"docker": zap.NewDevelopmentConfig,
}

// productionConfig logs JSON with ISO8601 timestamps and without sampling,
// since curation passes emit few but important entries.
func productionConfig() zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// NewLogger creates a logger for env. A non-empty level overrides the
// environment default: debug, info, warn, error.
func NewLogger(env, level string) (*zap.Logger, error) {
	base, ok := baseConfigs[env]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}
	cfg := base()

	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}
