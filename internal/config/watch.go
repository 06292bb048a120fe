package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	watchTick   = 200 * time.Millisecond
	watchSettle = 150 * time.Millisecond
)

// Watch calls reload whenever the settings file at path is written or
// replaced, until ctx is cancelled. The parent directory is watched so
// editors that save through rename are seen. Bursts of events are
// collapsed into one reload once the file has been quiet for a moment.
func Watch(ctx context.Context, path string, reload func() error, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: creating watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	dir := filepath.Dir(target)

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("config: watching %s: %w", dir, err)
	}

	logger.Info("config watcher started", slog.String("path", target))

	var pendingSince time.Time

	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("config: fsnotify events channel closed unexpectedly")
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				pendingSince = time.Now()
			}

			if event.Has(fsnotify.Remove) {
				logger.Info("config file removed, keeping current settings", slog.String("path", target))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("config: fsnotify errors channel closed unexpectedly")
			}

			logger.Warn("config watcher error", slog.String("error", err.Error()))

		case <-ticker.C:
			if pendingSince.IsZero() || time.Since(pendingSince) < watchSettle {
				continue
			}

			pendingSince = time.Time{}

			// Reload logs its own failures.
			_ = reload()
		}
	}
}
