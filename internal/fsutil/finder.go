// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// FindUpward walks from start towards the file system root and returns the
// first directory that contains an entry named marker. The boolean is false
// when no ancestor has the marker.
func FindUpward(start string, marker string) (string, bool, error) {
	if marker == "" {
		panic("marker must not be empty")
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false, fmt.Errorf("resolving %q: %w", start, err)
	}
	for {
		_, err := os.Stat(filepath.Join(dir, marker))
		switch {
		case err == nil:
			return dir, true, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("checking %s in %s: %w", marker, dir, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Glob returns every file below root matching the doublestar pattern, as
// paths joined onto root, sorted.
func Glob(root string, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("globbing %q under %s: %w", pattern, root, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, filepath.Join(root, filepath.FromSlash(m)))
	}
	sort.Strings(files)
	return files, nil
}
