package tabular

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called after an external change to a workbook section.
// kind is one of "updated", "deleted".
type EventCallback func(kind, section string)

// Watch starts an fsnotify watcher on the workbook directory and reports
// section-level changes until ctx is cancelled. Rewrites performed by the
// Workbook itself also surface here (the rename at the end of an atomic
// write), which keeps SSE clients current without a separate publish path.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			// Skip the atomic-write temp files; only the final rename matters.
			if strings.HasPrefix(name, ".raido-tmp-") || !strings.HasSuffix(name, ".csv") {
				continue
			}
			section := strings.TrimSuffix(name, ".csv")

			switch {
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				logger.Debug("watcher: section removed", slog.String("section", section))
				if cb != nil {
					cb("deleted", section)
				}
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				logger.Debug("watcher: section changed", slog.String("section", section))
				if cb != nil {
					cb("updated", section)
				}
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}
