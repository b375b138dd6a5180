package fixtree

import (
	"context"

	"github.com/giantswarm/fixtree/internal/treediff"
)

// TreeDiff classifies the differences between two trees by relative path.
//
// TreeDiff is a type alias (not a named type) so that the underlying
// [treediff.Result] fields and methods are part of the public API:
//
//   - Missing, Extra, and Changed list the differing paths in sorted order.
//   - InSync reports whether the trees have identical content.
type TreeDiff = treediff.Result

// DiffOptions adjusts how DiffTrees selects files for comparison.
type DiffOptions struct {
	// Extensions restricts the comparison to files with one of the given
	// extensions (case-insensitive, with or without the leading dot, e.g.
	// ".yaml" or "yaml"). Nil or empty compares all files.
	Extensions []string
}

// DiffTrees compares the tree at got against the tree at want and
// classifies every file as missing (present in want only), extra (present
// in got only), or changed (present in both with differing content).
//
// Content comparison checks file sizes first and hashes only same-size
// pairs, in parallel with bounded concurrency. Both roots must exist and be
// directories; errors propagate to the caller. The comparison honors ctx
// cancellation.
func DiffTrees(ctx context.Context, got, want string, opts *DiffOptions) (TreeDiff, error) {
	var exts []string
	if opts != nil {
		exts = opts.Extensions
	}
	return treediff.Diff(ctx, got, want, exts)
}

// MirrorTree makes destination an exact replica of source, incrementally:
// only missing and changed files are copied (mode-preserving), extra files
// are deleted, and directories left empty afterwards are removed bottom-up.
// Destination is created if absent.
//
// Contrast with CopyTree, which unions and never deletes. The mirror honors
// ctx cancellation between file operations.
func MirrorTree(ctx context.Context, source, destination string) error {
	return treediff.Mirror(ctx, source, destination)
}
