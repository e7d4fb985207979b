// Package logger builds the zap logger used by the gotrail CLI.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mickamy/gotrail/internal/conf"
)

// New returns a production (JSON) or development (console) logger at the configured level.
func New(cfg *conf.LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	development := false
	if cfg != nil {
		development = cfg.Development
		if cfg.Level != "" {
			if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
				return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
			}
		}
	}

	zc := zap.NewProductionConfig()
	if development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
