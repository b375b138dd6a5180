package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/giantswarm/fixtree/internal/sentinel"
)

// ErrSameTree is returned when the destination of a tree copy is the source
// itself or a directory inside it.
const ErrSameTree = sentinel.Error("source and destination are the same tree")

// CopyTree recursively copies every file and subdirectory from src into dst,
// creating dst (and any missing parents) first. Existing entries in dst
// survive unless a source file lands on the same relative path, in which
// case the file is overwritten: the result is the union of both trees with
// the source winning on collisions. Source file permission bits are
// preserved.
//
// Entries are classified with os.Stat, so symlinks are followed: a symlink
// to a directory is recursed into and a symlink to a file is copied as a
// regular file. Copying a tree into itself or into one of its own
// subdirectories is rejected with ErrSameTree.
//
// Unlike ResetDir, nothing is recovered locally: the first failure aborts
// the copy and propagates to the caller wrapped with the failing path.
func CopyTree(src, dst string) error {
	if src == "" {
		return ErrEmptySrc
	}
	if dst == "" {
		return ErrEmptyDst
	}

	if err := checkDistinctTrees(src, dst); err != nil {
		return err
	}

	if err := EnsureDir(dst); err != nil {
		return fmt.Errorf("prepare destination: %w", err)
	}

	return copyTreeEntries(src, dst)
}

// checkDistinctTrees rejects copies where dst is src or lies inside src.
// Lexical comparison of absolute paths catches the plain cases; os.SameFile
// catches aliasing through symlinks when both directories already exist.
func checkDistinctTrees(src, dst string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return fmt.Errorf("resolve source %s: %w", src, err)
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return fmt.Errorf("resolve destination %s: %w", dst, err)
	}
	if absDst == absSrc || strings.HasPrefix(absDst, absSrc+string(filepath.Separator)) {
		return ErrSameTree
	}

	if srcInfo, err := os.Stat(src); err == nil {
		if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(srcInfo, dstInfo) {
			return ErrSameTree
		}
	}
	return nil
}

// copyTreeEntries copies the children of src into dst, recursing into
// directories.
func copyTreeEntries(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", src, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		info, err := os.Stat(srcPath)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", srcPath, err)
		}

		if info.IsDir() {
			if err := EnsureDir(dstPath); err != nil {
				return err
			}
			if err := copyTreeEntries(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		mode := info.Mode().Perm()
		if err := CopyFile(srcPath, dstPath, &CopyFileOptions{Mode: &mode}); err != nil {
			return fmt.Errorf("copy %s: %w", srcPath, err)
		}
	}
	return nil
}
