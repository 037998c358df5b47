package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempDir(t *testing.T) *Dir {
	t.Helper()
	d, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	return d
}

func TestWriteAndRead(t *testing.T) {
	d := tempDir(t)
	content := []byte("name: orders\nannotations: []\n")
	if err := d.Write("shared/orders.yaml", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := d.Read("shared/orders.yaml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}

	// Overwrite leaves no temp files behind.
	if err := d.Write("shared/orders.yaml", []byte("name: orders\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(d.Root(), "shared", tempPattern))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestWriteRejectsNonGroupFiles(t *testing.T) {
	d := tempDir(t)
	if err := d.Write("notes.txt", []byte("x")); err == nil {
		t.Error("expected error for non-group file")
	}
}

func TestList(t *testing.T) {
	d := tempDir(t)
	_ = d.Write("b.yml", []byte("name: b\n"))
	_ = d.Write("a/c.yaml", []byte("name: c\n"))
	_ = os.WriteFile(filepath.Join(d.Root(), "readme.md"), []byte("skip"), 0o644)

	files, err := d.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 || files[0].Path != "a/c.yaml" || files[1].Path != "b.yml" {
		t.Errorf("files = %+v", files)
	}
}

func TestDelete(t *testing.T) {
	d := tempDir(t)
	_ = d.Write("del.yaml", []byte("name: del\n"))
	if err := d.Delete("del.yaml"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := d.Read("del.yaml"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestTraversalBlocked(t *testing.T) {
	d := tempDir(t)
	for _, p := range []string{"../escape.yaml", "a/../../escape.yaml", "/etc/passwd.yaml", ""} {
		if err := d.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
		if _, err := d.Read(p); err == nil {
			t.Errorf("expected error for read of %q", p)
		}
	}
}

func TestNewDir_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "modeler-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewDir(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"shared product group": "shared-product-group.yaml",
		"Order Measures!":      "order-measures.yaml",
		"  --  ":               "group.yaml",
		"q1/2024 sales":        "q1-2024-sales.yaml",
	}
	for in, want := range tests {
		if got := FileName(in); got != want {
			t.Errorf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}
