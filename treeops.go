package fixtree

import (
	"github.com/giantswarm/fixtree/internal/core"
	"github.com/giantswarm/fixtree/internal/fileutil"
)

// ResetResult describes what ResetDir did to a directory.
//
// ResetResult is a type alias (not a named type) so that the underlying
// [fileutil.ResetResult] fields and methods are part of the public API:
//
//   - Path, Created, and CleanupErr describe the outcome.
//   - Clean reports whether previous contents were fully removed.
type ResetResult = fileutil.ResetResult

// ResetDir resets path to exist-and-empty. A missing directory is created
// with all parents; an existing one has its contents removed and the
// directory recreated.
//
// Removal of previous contents is best-effort: a removal failure does not
// fail the call. The directory is still recreated, a warning is logged, and
// the failure is reported in ResetResult.CleanupErr for callers that need
// stronger guarantees. A failure to create the directory is logged and
// returned as the error.
//
// On success the directory exists, is a directory, and is empty; calling
// ResetDir again leaves it empty. There is no atomicity across the remove
// and recreate steps, so a crash mid-way can leave the directory partially
// cleared or missing.
//
// ResetDir performs no locking. Callers must not invoke it concurrently
// with other operations on the same path.
func ResetDir(path string) (ResetResult, error) {
	res, err := fileutil.ResetDir(path)
	if err != nil {
		core.Logger().Error("failed to reset directory", "path", path, "error", err)
		return res, err
	}
	if !res.Clean() {
		core.Logger().Warn("could not fully clear directory, continuing", "path", path, "error", res.CleanupErr)
	}
	return res, nil
}

// CopyTree recursively copies every file and subdirectory from source into
// destination, creating destination and any missing parents and preserving
// relative structure and source file permission bits.
//
// The copy is a union: entries that exist only in destination survive, and
// files at matching relative paths are overwritten with the source version.
// Use MirrorTree when destination must become an exact replica instead.
//
// Symlinked entries are followed: a link to a directory is recursed into
// and a link to a file is copied as a regular file. Source and destination
// resolving to the same directory return ErrSameTree.
//
// Unlike ResetDir there is no best-effort branch: every failure propagates
// to the caller wrapped with the failing path.
func CopyTree(source, destination string) error {
	return fileutil.CopyTree(source, destination)
}

// EnsureDir creates path and any missing parents without touching existing
// contents. Use ResetDir to also clear the directory.
func EnsureDir(path string) error {
	return fileutil.EnsureDir(path)
}

// RemoveTree deletes path and everything below it. A missing path is not an
// error. An empty path returns ErrEmptyPath.
func RemoveTree(path string) error {
	return fileutil.RemoveTree(path)
}
