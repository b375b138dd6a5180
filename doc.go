// Package fixtree prepares filesystem fixtures for test harnesses.
//
// fixtree resets working directories to a known-empty state, copies fixture
// trees with union semantics, compares produced trees against reference
// trees, stages expensive fixtures in a cross-process cache, and hands out
// uniquely tagged per-run directories through a Workspace with
// retention-based pruning.
//
// # Basic Usage
//
//	import "github.com/giantswarm/fixtree"
//
//	ctx := context.Background()
//
//	ws := fixtree.NewWorkspace()
//	if err := ws.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer ws.Close()
//
//	run, err := ws.BeginRun(ctx, "parser")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer run.Discard(ctx) // Returns nil on success; safe to ignore in defer
//
//	if err := fixtree.CopyTree("testdata/fixtures", run.Dir()); err != nil {
//	    log.Fatal(err)
//	}
//	// Exercise the code under test against run.Dir()...
//
// # Staging Expensive Fixtures
//
// Fixture trees that are slow to produce can be staged once per content hash
// into a shared cache and copied from there. The cache is safe across
// concurrent processes: staging serializes on a file lock and publishes with
// an atomic rename.
//
//	res, err := fixtree.StageTree(ctx, fixtree.StageConfig{
//	    Source:   "testdata/generated",
//	    CacheDir: "/tmp/fixture-cache",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := fixtree.CopyTree(res.Path, run.Dir()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Comparing Against Reference Trees
//
// DiffTrees classifies the differences between a produced tree and a wanted
// tree; MirrorTree makes a destination an exact replica of a source:
//
//	diff, err := fixtree.DiffTrees(ctx, run.Dir(), "testdata/golden", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !diff.InSync() {
//	    log.Fatalf("tree drift: missing=%v extra=%v changed=%v",
//	        diff.Missing, diff.Extra, diff.Changed)
//	}
//
// The two copy operations differ on purpose: CopyTree unions the source into
// the destination and never deletes, while MirrorTree replicates and does.
package fixtree
