//go:build integration

package fixtree_test

import (
	"context"
	"testing"

	"github.com/giantswarm/fixtree"
	"github.com/giantswarm/fixtree/tests/internal/testutil"
)

// beginRun starts a run on the shared workspace and fails the test on error.
// The caller is responsible for discarding the run.
//
//nolint:ireturn // Test helper mirrors the public API.
func beginRun(ctx context.Context, t *testing.T, prefix string) fixtree.Run {
	t.Helper()

	return testutil.BeginRun(ctx, t, sharedWorkspace, prefix)
}

// beginRunGuarded starts a run that is discarded via t.Cleanup even when the
// test forgets or fails early. Call the returned function to discard eagerly.
//
//nolint:ireturn // Test helper mirrors the public API.
func beginRunGuarded(ctx context.Context, t *testing.T, prefix string) (fixtree.Run, func()) {
	t.Helper()

	return testutil.BeginRunWithGuardedDiscard(ctx, t, sharedWorkspace, prefix)
}

// writeTree materializes files under root, creating parent directories.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	testutil.WriteTree(t, root, files)
}

// readTree returns all regular files under root keyed by relative path.
func readTree(t *testing.T, root string) map[string]string {
	t.Helper()

	return testutil.ReadTree(t, root)
}
