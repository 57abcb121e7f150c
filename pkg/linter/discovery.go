package linter

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/uilint/pkg/config"
	"github.com/gnana997/uilint/pkg/parser"
)

// FileFilter selects lintable files with the include/exclude globs of the
// files config section. Globs match slash-separated paths relative to the
// lint root.
type FileFilter struct {
	include []string
	exclude []string
}

// NewFileFilter validates the configured globs.
func NewFileFilter(cfg config.FilesConfig) (*FileFilter, error) {
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}
	return &FileFilter{include: cfg.Include, exclude: cfg.Exclude}, nil
}

// Excluded reports whether a root-relative path matches an exclude glob.
// Directories that match are pruned from walks.
func (f *FileFilter) Excluded(relPath string) bool {
	for _, pattern := range f.exclude {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

// Included reports whether a root-relative file path should be linted.
func (f *FileFilter) Included(relPath string) bool {
	if parser.DetectDialect(relPath) == parser.DialectUnknown || f.Excluded(relPath) {
		return false
	}
	if len(f.include) == 0 {
		return true
	}
	for _, pattern := range f.include {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

// Match reports whether path, absolute or relative to the working
// directory, is a file under root the filter selects.
func (f *FileFilter) Match(root, path string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return false
	}
	return f.Included(rel)
}

// Discover walks root and returns the selected files as sorted absolute
// paths.
func (f *FileFilter) Discover(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == "." {
			return nil
		}

		if d.IsDir() {
			if f.Excluded(relPath) {
				return filepath.SkipDir
			}
			return nil
		}
		if f.Included(relPath) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Expand resolves command-line paths: directories are walked with the
// filter, files are kept when their extension is supported. The result is
// sorted, absolute and free of duplicates.
func (f *FileFilter) Expand(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		var found []string
		if info.IsDir() {
			found, err = f.Discover(p)
			if err != nil {
				return nil, err
			}
		} else if parser.DetectDialect(p) != parser.DialectUnknown {
			abs, err := filepath.Abs(p)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
			}
			found = []string{abs}
		}
		for _, file := range found {
			if !seen[file] {
				seen[file] = true
				files = append(files, file)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
