package discover

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiscoverFindsPythonSourcesAndSkipsExcludedDirs(t *testing.T) {
	root := t.TempDir()

	mustWrite(t, filepath.Join(root, "a.py"), "")
	mustWrite(t, filepath.Join(root, "b.pyi"), "")
	mustWrite(t, filepath.Join(root, "readme.txt"), "")

	nested := filepath.Join(root, "pkg")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	mustWrite(t, filepath.Join(nested, "c.py"), "")

	venv := filepath.Join(root, ".venv", "lib")
	if err := os.MkdirAll(venv, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	mustWrite(t, filepath.Join(venv, "ignored.py"), "")

	files, err := Discover(context.Background(), "file://"+root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	var names []string
	for _, f := range files {
		names = append(names, strings.TrimPrefix(f, "file://"))
	}

	want := map[string]bool{
		filepath.Join(root, "a.py"):        true,
		filepath.Join(root, "b.pyi"):       true,
		filepath.Join(nested, "c.py"):      true,
	}
	if len(names) != len(want) {
		t.Fatalf("expected %d files, got %d: %v", len(want), len(names), names)
	}
	for _, n := range names {
		if !want[n] {
			t.Fatalf("unexpected file %q in discovery results: %v", n, names)
		}
	}
}

func TestDiscoverSortsInNaturalOrder(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "file10.py"), "")
	mustWrite(t, filepath.Join(root, "file2.py"), "")

	files, err := Discover(context.Background(), "file://"+root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if !strings.HasSuffix(files[0], "file2.py") || !strings.HasSuffix(files[1], "file10.py") {
		t.Fatalf("expected natural order [file2.py, file10.py], got %v", files)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
