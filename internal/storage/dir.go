// Package storage reads and writes annotation group files under a root
// directory.
package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const tempPattern = ".modeler-tmp-*"

// File describes one group file found under a Dir.
type File struct {
	Path      string // relative to the root, slash separated
	UpdatedAt time.Time
}

// Dir is a directory of group files.
type Dir struct {
	root string // absolute
}

// NewDir opens root, creating it when missing.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute root directory.
func (d *Dir) Root() string { return d.root }

// IsGroupFile reports whether name has a group file extension.
func IsGroupFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// FileName returns the file name a group called name is exported under:
// lower case, runs of anything but letters and digits collapsed to '-'.
func FileName(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "group"
	}
	return slug + ".yaml"
}

// safePath resolves rel against the root and rejects anything that
// escapes it.
func (d *Dir) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if rel == "" || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: invalid path: %q", rel)
	}
	abs := filepath.Join(d.root, cleaned)
	if !strings.HasPrefix(abs, d.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes root: %s", rel)
	}
	return abs, nil
}

// List returns every group file under the root, sorted by path.
func (d *Dir) List() ([]File, error) {
	var out []File
	err := filepath.WalkDir(d.root, func(p string, e fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if e.IsDir() || !IsGroupFile(e.Name()) {
			return nil
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(d.root, p)
		out = append(out, File{Path: filepath.ToSlash(rel), UpdatedAt: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Read returns the contents of the file at path.
func (d *Dir) Read(path string) ([]byte, error) {
	abs, err := d.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write replaces the file at path atomically: temp file, fsync, rename.
// A watcher on the directory only ever sees complete group files, since
// the temp name has no group file extension.
func (d *Dir) Write(path string, content []byte) error {
	abs, err := d.safePath(path)
	if err != nil {
		return err
	}
	if !IsGroupFile(abs) {
		return fmt.Errorf("storage: not a group file: %s", path)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes the file at path.
func (d *Dir) Delete(path string) error {
	abs, err := d.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}
