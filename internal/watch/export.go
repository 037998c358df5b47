package watch

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/starford/modeler/internal/annotation"
	"github.com/starford/modeler/internal/modeler"
	"github.com/starford/modeler/internal/storage"
)

// Source lists and loads stored groups.
type Source interface {
	ListGroups(ctx context.Context) ([]modeler.GroupListItem, error)
	GetGroup(ctx context.Context, name string) (*modeler.GroupDetail, error)
}

// Export writes every stored group to d as a group file. A group already
// present in some file is written back to that file, others go to
// storage.FileName(name). Files whose content would not change are left
// alone so a running watcher sees no event. It returns the number of
// files written.
func Export(ctx context.Context, d *storage.Dir, svc Source, logger *slog.Logger) (int, error) {
	paths, err := groupPaths(d, logger)
	if err != nil {
		return 0, err
	}
	items, err := svc.ListGroups(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, it := range items {
		g, err := svc.GetGroup(ctx, it.Name)
		if err != nil {
			return n, err
		}
		doc, err := annotation.MarshalGroupYAML(g.Group)
		if err != nil {
			return n, err
		}
		path, ok := paths[it.Name]
		if !ok {
			path = storage.FileName(it.Name)
		}
		if old, err := d.Read(path); err == nil && bytes.Equal(old, doc) {
			continue
		}
		if err := d.Write(path, doc); err != nil {
			return n, err
		}
		n++
		logger.Debug("export: group written", slog.String("group", it.Name), slog.String("path", path))
	}
	return n, nil
}

// groupPaths maps group names to the files that define them. Unreadable
// files are skipped.
func groupPaths(d *storage.Dir, logger *slog.Logger) (map[string]string, error) {
	files, err := d.List()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(files))
	for _, f := range files {
		data, err := d.Read(f.Path)
		if err != nil {
			continue
		}
		g, err := annotation.ParseGroupYAML(data)
		if err != nil || g.Name == "" {
			logger.Debug("export: skipping file", slog.String("path", f.Path))
			continue
		}
		out[g.Name] = f.Path
	}
	return out, nil
}
