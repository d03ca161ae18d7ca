package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/palisadehq/palisade/pkg/observability"
	"github.com/palisadehq/palisade/pkg/ratelimit"
)

// WatchPresets watches a preset file and calls apply with the reloaded
// preset map whenever it changes. Parse failures keep the previous presets
// in effect. Blocks until ctx is cancelled.
func WatchPresets(ctx context.Context, path string, logger *observability.Logger, apply func(map[string]ratelimit.Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory rather than the file itself so atomic
	// rename-into-place updates (the common editor and configmap pattern)
	// are still observed.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			presets, err := LoadPresets(path)
			if err != nil {
				logger.WithError(err).WithField("path", path).Warn("Failed to reload rate limit presets, keeping previous values")
				continue
			}
			apply(presets)
			logger.WithField("path", path).Info("Reloaded rate limit presets")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Warn("Preset file watcher error")
		}
	}
}
