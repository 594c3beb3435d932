package config

import (
	"context"

	"go.uber.org/zap"

	"github.com/hyperjump/docchat/internal/watcher"
)

// Watch reloads the config file at path whenever it changes and passes the new config to
// onReload. Invalid configs are logged and skipped. The returned stop func releases the watcher.
func Watch(ctx context.Context, path string, logger *zap.Logger, onReload func(*Config)) (func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := watcher.NewWatcher([]string{path}, func(changed string) {
		cfg, err := Load(changed)
		if err != nil {
			logger.Warn("config reload failed", zap.String("path", changed), zap.Error(err))
			return
		}
		logger.Info("config reloaded", zap.String("path", changed))
		onReload(cfg)
	}, watcher.WithLogger(logger))
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w.Stop, nil
}
