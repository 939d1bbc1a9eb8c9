package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrNotDirectory is returned when the scan root exists but is not a directory
var ErrNotDirectory = errors.New("not a directory")

// Matches reports whether a file path passes the filename and directory filters
func (f FileFilter) Matches(path string) bool {
	return f.MatchesIn(filepath.Dir(path), filepath.Base(path))
}

// MatchesIn reports whether a file name inside dir passes the filters.
// dir is compared verbatim, so callers decide how it is spelled.
func (f FileFilter) MatchesIn(dir, name string) bool {
	if f.FilenamePrefix != "" && !strings.HasPrefix(name, f.FilenamePrefix) {
		return false
	}

	if len(f.DirectorySubstrings) == 0 {
		return true
	}

	for _, sub := range f.DirectorySubstrings {
		if strings.Contains(dir, sub) {
			return true
		}
	}

	return false
}

// HasExtension reports whether the file extension is one of exts.
// Leading dots of the base name are not an extension, so ".c" has none.
func HasExtension(path string, exts []string) bool {
	ext := filepath.Ext(strings.TrimLeft(filepath.Base(path), "."))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// ScanDirectory recursively lists files under root that have one of the given
// extensions and pass the filter. Files are returned in lexical walk order.
// Unreadable subdirectories are logged and skipped.
func ScanDirectory(root string, filter FileFilter, exts []string, logger *log.Logger) ([]string, error) {
	if logger == nil {
		logger = log.Default()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", root, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("failed to scan directory %s: %w", root, ErrNotDirectory)
	}

	var files []string

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("Skipping unreadable path", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !HasExtension(path, exts) || !filter.MatchesIn(rawDir(root, filepath.Dir(path)), d.Name()) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", root, err)
	}

	return files, nil
}

// rawDir spells dir relative to root as given, without cleaning root,
// so directory filters see the same prefix the user typed
func rawDir(root, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return root
	}

	if strings.HasSuffix(root, string(filepath.Separator)) {
		return root + rel
	}
	return root + string(filepath.Separator) + rel
}
