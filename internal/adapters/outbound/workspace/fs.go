package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/monkeycoder/railcheck/internal/domain"
)

// Opener implements domain.WorkspaceOpener over the local filesystem.
type Opener struct{}

func New() *Opener {
	return &Opener{}
}

func (o *Opener) Open(root string, excludeDirs []string) domain.Workspace {
	skip := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		skip[strings.TrimSuffix(d, "/")] = true
	}
	return &FS{root: root, skip: skip}
}

// FS is a read-only view of one scan target. Paths are slash-separated and
// relative to root.
type FS struct {
	root  string
	skip  map[string]bool
	files []string // lazily walked
}

func (w *FS) abs(path string) string {
	return filepath.Join(w.root, filepath.FromSlash(path))
}

func (w *FS) Exists(path string) bool {
	info, err := os.Stat(w.abs(path))
	return err == nil && !info.IsDir()
}

func (w *FS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(w.abs(path))
}

// Glob matches patterns against every file below root, skipping excluded
// directories by name at any depth.
func (w *FS) Glob(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	if w.files == nil {
		files, err := w.walk()
		if err != nil {
			return nil, err
		}
		w.files = files
	}

	var out []string
	for _, f := range w.files {
		for _, p := range patterns {
			ok, err := doublestar.Match(p, f)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, f)
				break
			}
		}
	}
	return out, nil
}

func (w *FS) walk() ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == w.root {
				return err
			}
			// Unreadable subtrees are skipped.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != w.root && w.skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, _ := filepath.Rel(w.root, path)
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return files, nil
	}
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}
