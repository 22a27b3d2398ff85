// Package logging builds the application's zap logger and bridges injector
// resolution events into it.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-injector/framework/config"
	"github.com/km-arc/go-injector/framework/container"
)

// New builds a logger for cfg: production settings (JSON, sampling) in
// production, development settings (console, stack traces on warn) elsewhere.
// LOG_LEVEL and LOG_FORMAT override either preset.
//
//	logger, err := logging.New(cfg)
//	defer logger.Sync()
func New(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = cfg.Log.Format

	logger, err := zc.Build(zap.Fields(zap.String("app", cfg.App.Name)))
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}

// Hook logs every resolution: failures at Warn, successes at Debug.
//
//	b := container.NewBuilder(container.WithHooks(logging.Hook(logger)))
func Hook(logger *zap.Logger) container.ResolveHook {
	logger = logger.Named("injector")
	return func(e container.ResolveEvent) {
		fields := []zap.Field{
			zap.Stringer("injector", e.InjectorID),
			zap.Stringer("service", e.Service),
			zap.String("shape", string(e.Shape)),
			zap.Int("depth", e.Depth),
			zap.Duration("duration", e.Duration),
		}
		if e.Err != nil {
			logger.Warn("service resolution failed", append(fields, zap.Error(e.Err))...)
			return
		}
		logger.Debug("service resolved", fields...)
	}
}
