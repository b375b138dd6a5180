package fileutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// CollectFiles returns the relative paths of all regular files under root,
// sorted for determinism. When exts is non-empty, only files whose extension
// matches one of the entries (case-insensitive, with or without the leading
// dot) are returned. Symlinks are neither followed nor listed.
func CollectFiles(root string, exts []string) ([]string, error) {
	match := extMatcher(exts)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !match(path) {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return fmt.Errorf("rel path: %w", relErr)
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	slices.Sort(files)
	return files, nil
}

// extMatcher returns a predicate matching paths against the extension list.
// An empty list matches everything.
func extMatcher(exts []string) func(string) bool {
	if len(exts) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = struct{}{}
	}
	return func(path string) bool {
		_, ok := set[strings.ToLower(filepath.Ext(path))]
		return ok
	}
}
