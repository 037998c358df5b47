package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/modeler/internal/storage"
)

// EventCallback is called after a watcher-driven store change.
// kind is one of "created", "updated".
type EventCallback func(kind string, group string)

// Watch starts an fsnotify watcher on dir and stores group files as they
// are created or written, until ctx is cancelled. Files that do not parse
// yet (for example while an editor is still writing) are logged and picked
// up again on the next write. Removing a file leaves its group stored.
func Watch(ctx context.Context, dir string, svc Syncer, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", dir))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					syncNewDir(ctx, svc, ev.Name, logger, cb)
					continue
				}
			}

			if !storage.IsGroupFile(ev.Name) {
				continue
			}
			changed, name, syncErr := syncFile(ctx, svc, ev.Name)
			if syncErr != nil {
				logger.Warn("watcher: group failed", slog.String("path", ev.Name), slog.String("error", syncErr.Error()))
				continue
			}
			if !changed {
				continue
			}
			kind := "updated"
			if ev.Op&fsnotify.Create != 0 {
				kind = "created"
			}
			logger.Debug("watcher: group stored", slog.String("path", ev.Name), slog.String("group", name), slog.String("op", kind))
			if cb != nil {
				cb(kind, name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// syncNewDir stores any group files found in a newly created directory.
func syncNewDir(ctx context.Context, svc Syncer, dir string, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.IsGroupFile(path) {
			return nil
		}
		changed, name, syncErr := syncFile(ctx, svc, path)
		if syncErr == nil && changed {
			logger.Debug("watcher: group stored from new dir", slog.String("path", path))
			if cb != nil {
				cb("created", name)
			}
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
