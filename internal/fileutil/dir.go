package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/giantswarm/fixtree/internal/sentinel"
)

// ErrEmptyPath is returned when a directory path is empty.
const ErrEmptyPath = sentinel.Error("path must not be empty")

// EnsureDir creates a directory and all parent directories if they don't exist.
// Uses mode 0755. Returns nil if the directory already exists.
func EnsureDir(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// EnsureDirForFile creates the parent directory of filePath if it does not
// already exist, ensuring the file can be created without a missing-directory error.
func EnsureDirForFile(filePath string) error {
	if err := EnsureDir(filepath.Dir(filePath)); err != nil {
		return fmt.Errorf("ensure dir for %s: %w", filePath, err)
	}
	return nil
}

// RemoveTree deletes path and everything underneath it. A missing path is not
// an error. RemoveAll deletes everything it can before reporting the first
// failure, so even the error case usually leaves less behind than it found.
func RemoveTree(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove directory tree %s: %w", path, err)
	}
	return nil
}

// ResetResult reports the outcome of a directory reset.
type ResetResult struct {
	// Path is the directory the reset operated on.
	Path string

	// Created reports whether the directory was absent and created fresh,
	// as opposed to wiped and recreated.
	Created bool

	// CleanupErr records a failure while removing the previous contents.
	// The directory was still recreated, but stale entries may remain
	// underneath it.
	CleanupErr error
}

// Clean reports whether the previous contents were removed without error.
func (r ResetResult) Clean() bool {
	return r.CleanupErr == nil
}

// ResetDir guarantees that path exists as an empty directory: created with
// all missing parents when absent, wiped and recreated when present. On
// success the returned error is nil and the result describes which branch
// ran.
//
// Removal is best effort. A failure during the wipe is recorded in
// ResetResult.CleanupErr, the directory is recreated regardless, and the
// error return stays nil so callers can decide how much staleness they
// tolerate. Only a failure to create the directory itself is returned as an
// error.
//
// There is no atomicity across the wipe and the recreate: a crash in between
// can leave the directory partially cleared or missing entirely.
func ResetDir(path string) (ResetResult, error) {
	res := ResetResult{Path: path}
	if path == "" {
		return res, ErrEmptyPath
	}

	_, statErr := os.Stat(path)
	switch {
	case errors.Is(statErr, os.ErrNotExist):
		if err := EnsureDir(path); err != nil {
			return res, err
		}
		res.Created = true
		return res, nil
	case statErr != nil:
		// Anything else (permission on a parent, a file in the middle of
		// the path) means the directory cannot be prepared at all.
		return res, fmt.Errorf("inspect directory %s: %w", path, statErr)
	}

	// Path exists: remove the whole tree, then recreate it. A partial wipe
	// still proceeds to the recreate step so the caller always ends up with
	// a directory at path.
	if err := os.RemoveAll(path); err != nil {
		res.CleanupErr = fmt.Errorf("remove directory tree %s: %w", path, err)
	}

	if err := EnsureDir(path); err != nil {
		return res, err
	}
	return res, nil
}
