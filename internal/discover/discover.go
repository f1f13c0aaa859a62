// Package discover walks a project tree for Python source files to
// analyze, using viant/afs so the same code works against local disk,
// archives, or any other afs-registered scheme, and sorts results with
// maruel/natural so `file2.py` sorts before `file10.py` in CLI output
// (§3 domain stack: file discovery).
package discover

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"github.com/viant/afs"
	"github.com/viant/afs/option"
	"github.com/viant/afs/storage"
)

// excludedDirs are directory names never descended into, matching the
// common Python project convention of skipping virtualenvs and caches.
var excludedDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true, "__pycache__": true,
	".venv": true, "venv": true, ".mypy_cache": true, ".pytest_cache": true,
	".tox": true, "node_modules": true, ".ruff_cache": true,
}

// Discover returns every `.py`/`.pyi` file under root (an afs URL, e.g.
// `file:///path/to/project`), sorted in natural order.
func Discover(ctx context.Context, root string) ([]string, error) {
	fs := afs.New()
	var files []string

	err := walk(ctx, fs, root, &files)
	if err != nil {
		return nil, fmt.Errorf("discover: walking %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return natural.Less(files[i], files[j]) })
	return files, nil
}

func walk(ctx context.Context, fs afs.Service, url string, out *[]string) error {
	objects, err := fs.List(ctx, url, option.NewRecursive(false))
	if err != nil {
		return err
	}
	for _, obj := range objects {
		if obj.URL() == url {
			continue
		}
		if obj.IsDir() {
			if excludedDirs[obj.Name()] {
				continue
			}
			if err := walk(ctx, fs, obj.URL(), out); err != nil {
				return err
			}
			continue
		}
		if isPythonSource(obj) {
			*out = append(*out, obj.URL())
		}
	}
	return nil
}

func isPythonSource(obj storage.Object) bool {
	name := obj.Name()
	return strings.HasSuffix(name, ".py") || strings.HasSuffix(name, ".pyi")
}
