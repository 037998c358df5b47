// Package watch keeps the metadata store in step with a directory of
// annotation group files.
package watch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/modeler/internal/annotation"
	"github.com/starford/modeler/internal/storage"
)

var errEmptyFile = errors.New("empty group file")

// Syncer stores a group unless the stored copy is identical.
type Syncer interface {
	SyncGroup(ctx context.Context, g *annotation.Group) (bool, error)
}

// Sync walks dir and stores every new or changed group file. Files that
// fail to parse or validate are logged and skipped. It returns the number
// of groups written.
func Sync(ctx context.Context, dir string, svc Syncer, logger *slog.Logger) (int, error) {
	d, err := storage.NewDir(dir)
	if err != nil {
		return 0, err
	}
	files, err := d.List()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		path := filepath.Join(d.Root(), filepath.FromSlash(f.Path))
		changed, name, err := syncFile(ctx, svc, path)
		if err != nil {
			logger.Warn("sync: group failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		if changed {
			n++
			logger.Debug("sync: group stored", slog.String("path", f.Path), slog.String("group", name))
		}
	}
	return n, nil
}

// syncFile parses the group file at path and hands it to svc.
func syncFile(ctx context.Context, svc Syncer, path string) (bool, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, "", err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, "", errEmptyFile
	}
	g, err := annotation.ParseGroupYAML(data)
	if err != nil {
		return false, "", err
	}
	if g.Name == "" {
		g.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	changed, err := svc.SyncGroup(ctx, g)
	return changed, g.Name, err
}
