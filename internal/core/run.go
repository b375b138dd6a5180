package core

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/giantswarm/fixtree/internal/fileutil"
	"github.com/giantswarm/fixtree/internal/sentinel"
)

// ErrRunDiscarded is returned by Keep and Discard after the run has been
// discarded.
const ErrRunDiscarded = sentinel.Error("run already discarded")

// Run is one tagged run directory handed out by BeginRun. ID and Dir are
// plain accessors and stay readable after Discard; Keep and Discard report
// ErrRunDiscarded once the run is gone.
type Run struct {
	tag string
	dir string

	ws *Workspace

	// discarded flips exactly once. It is set before the directory and
	// catalog row are removed, so a failed Discard still reports
	// ErrRunDiscarded on later calls; whatever it left behind is collected
	// by the pruning sweep.
	discarded atomic.Bool
}

// ID returns the run tag, "<name>-<8 hex>".
func (r *Run) ID() string {
	return r.tag
}

// Dir returns the absolute run directory.
func (r *Run) Dir() string {
	return r.dir
}

// Keep marks the run as exempt from pruning. The run directory survives
// every future Prune until the run is discarded explicitly.
func (r *Run) Keep(ctx context.Context) error {
	if r.discarded.Load() {
		return ErrRunDiscarded
	}
	cat, err := r.ws.activeCatalog()
	if err != nil {
		return err
	}
	if err := cat.markKept(ctx, r.tag); err != nil {
		return fmt.Errorf("mark run %s kept: %w", r.tag, err)
	}
	return nil
}

// Discard deletes the run directory and its catalog row. Discard is
// one-shot: the first call performs the deletion and any further call
// returns ErrRunDiscarded, even when the first attempt failed partway (the
// pruning sweep collects leftovers).
func (r *Run) Discard(ctx context.Context) error {
	if !r.discarded.CompareAndSwap(false, true) {
		return ErrRunDiscarded
	}
	cat, err := r.ws.activeCatalog()
	if err != nil {
		return err
	}
	if err := fileutil.RemoveTree(r.dir); err != nil {
		return fmt.Errorf("discard run %s: %w", r.tag, err)
	}
	if err := cat.deleteRun(ctx, r.tag); err != nil {
		return fmt.Errorf("discard run %s: %w", r.tag, err)
	}
	Logger().Debug("run discarded", "tag", r.tag)
	return nil
}
