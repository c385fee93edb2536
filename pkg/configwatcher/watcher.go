package configwatcher

import (
	"context"
	"path/filepath"
	"time"

	"algoritmia_backend/internal/config"
	"algoritmia_backend/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type Reloader func(cfg *config.Config)

// Watch reloads the config file after writes settle for delay and hands
// the result to reload. It blocks until ctx is cancelled.
func Watch(ctx context.Context, file string, delay time.Duration, reload Reloader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	// editors often replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	timer := time.NewTimer(delay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Stop()
				timer.Reset(delay)
			}
		case <-timer.C:
			cfg, err := config.LoadConfig(filepath.Dir(absPath))
			if err != nil {
				logger.Log.Error("Failed to reload config", zap.Error(err))
				continue
			}
			reload(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Error("Config watcher error", zap.Error(err))
		}
	}
}

// ApplyLogLevel is the reloader used by the server: only the log level is
// safe to change without a restart.
func ApplyLogLevel(cfg *config.Config) {
	previous := logger.Level()
	if logger.SetLevel(cfg.Log.Level) && logger.Level() != previous {
		logger.Log.Info("Log level reloaded",
			zap.Stringer("from", previous),
			zap.Stringer("to", logger.Level()),
		)
	}
}
