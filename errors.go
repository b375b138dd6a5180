package fixtree

import (
	"github.com/giantswarm/fixtree/internal/core"
	"github.com/giantswarm/fixtree/internal/fileutil"
)

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain comparison.
const (
	// ErrEmptyPath is returned by ResetDir and RemoveTree when the path is empty.
	ErrEmptyPath = fileutil.ErrEmptyPath

	// ErrEmptySrc is returned by CopyTree when the source path is empty.
	ErrEmptySrc = fileutil.ErrEmptySrc

	// ErrEmptyDst is returned by CopyTree when the destination path is empty.
	ErrEmptyDst = fileutil.ErrEmptyDst

	// ErrSameTree is returned by CopyTree when source and destination resolve
	// to the same directory. Copying a tree into itself would recurse forever
	// because symlinked entries are followed.
	ErrSameTree = fileutil.ErrSameTree

	// ErrNotInitialized is returned by BeginRun and Prune when Initialize has
	// not been called.
	ErrNotInitialized = core.ErrNotInitialized

	// ErrClosed is returned by workspace operations after Close.
	ErrClosed = core.ErrClosed

	// ErrInvalidRunName is returned by BeginRun when the run name cannot form
	// a safe directory name.
	ErrInvalidRunName = core.ErrInvalidRunName

	// ErrRunDiscarded is returned by Run.Keep and Run.Discard after the run
	// has been discarded.
	ErrRunDiscarded = core.ErrRunDiscarded
)
