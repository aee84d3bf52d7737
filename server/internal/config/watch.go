package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchFile calls onChange each time the file at path is written, created or
// replaced by a rename. It watches the parent directory, so the watch
// survives atomic saves that swap in a new inode. The file must exist when
// WatchFile is called. It runs until ctx is cancelled.
func WatchFile(ctx context.Context, path string, onChange func()) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch %q: %w", path, err)
	}
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("watch %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %q: %w", filepath.Dir(target), err)
	}
	slog.Info("watching for changes", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			// A rename onto target arrives as Create; Remove and Chmod carry
			// no new content.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "path", target, "err", err)
		}
	}
}

// Watch reloads the config at path on every change and passes it to
// onChange. A reload that fails (invalid YAML, failed validation) is logged
// and skipped, so the caller's previous config stays active.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	return WatchFile(ctx, path, func() {
		cfg, err := Load(path)
		if err != nil {
			slog.Error("config: reload failed, keeping previous config",
				"path", path, "err", err)
			return
		}
		slog.Info("config: reloaded", "path", path)
		onChange(cfg)
	})
}
