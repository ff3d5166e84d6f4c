package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// watch calls run once and then again every time the file at path is written,
// until ctx is done. Errors from run are reported and do not stop watching.
func watch(ctx context.Context, path string, run func(runLogger *slog.Logger) error) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("could not get absolute path of target: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not start watching: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// editors often replace the file rather than writing it, so watch its directory
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("could not watch %s: %w", target, err)
	}

	runOnce := func() {
		runLogger := logger.With("run", uuid.New().String())
		runLogger.Info("running", "path", target)
		if err := run(runLogger); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
	}
	runOnce()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != target || !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			runOnce()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
