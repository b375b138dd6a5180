package treediff

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/giantswarm/fixtree/internal/fileutil"
)

// Mirror makes dst an exact content replica of src: files missing from dst
// or differing in content are copied over, files with no counterpart in src
// are deleted, and directories left empty by the deletions are pruned. The
// destination is created if absent.
//
// Unlike CopyTree, which unions two trees, Mirror converges dst onto src.
// Cancellation is honored between file operations.
func Mirror(ctx context.Context, src, dst string) error {
	if err := statDir(src); err != nil {
		return err
	}
	if err := fileutil.EnsureDir(dst); err != nil {
		return fmt.Errorf("prepare destination: %w", err)
	}

	d, err := Diff(ctx, dst, src, nil)
	if err != nil {
		return err
	}

	for _, rel := range slices.Concat(d.Missing, d.Changed) {
		if err := ctx.Err(); err != nil {
			return err
		}
		srcPath := filepath.Join(src, rel)
		info, err := os.Stat(srcPath)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", srcPath, err)
		}
		mode := info.Mode().Perm()
		if err := fileutil.CopyFile(srcPath, filepath.Join(dst, rel), &fileutil.CopyFileOptions{Mode: &mode}); err != nil {
			return fmt.Errorf("copy %s: %w", srcPath, err)
		}
	}

	for _, rel := range d.Extra {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dst, rel)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}

	return pruneEmptyDirs(dst)
}

// pruneEmptyDirs removes every directory under root that ends up empty,
// deepest first, so directories emptied by their children's removal are
// caught in the same pass. root itself is never removed.
func pruneEmptyDirs(root string) error {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}

	// A child always sorts after its parent, so the reversed order visits
	// leaves before the directories that contain them.
	slices.Sort(dirs)
	slices.Reverse(dirs)

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("read directory %s: %w", dir, err)
		}
		if len(entries) != 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			return fmt.Errorf("remove empty directory %s: %w", dir, err)
		}
	}
	return nil
}
