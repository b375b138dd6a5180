package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/fixtree/internal/fileutil"
)

// pruneLockFileName is the cross-process prune lock, relative to the base
// dir. It stays on disk between sweeps.
const pruneLockFileName = "prune.lock"

// pruneLockRetryInterval is the interval between consecutive attempts to
// acquire the prune lock when another process holds it.
const pruneLockRetryInterval = 50 * time.Millisecond

// Prune removes stale unkept runs: those older than MaxRunAge and those
// beyond the newest MaxRuns, per the retention bounds of the configuration
// (a zero bound is disabled; with both disabled Prune is a no-op). Runs
// marked with Keep are never touched.
//
// Only one process prunes a base directory at a time: the sweep holds an
// exclusive file lock for its duration, bounded by LockTimeout. Directory
// removal is best-effort per run. A run that cannot be removed keeps its
// catalog row, is reported in the joined error, and becomes a candidate
// again on the next sweep; the remaining candidates are still processed.
func (w *Workspace) Prune(ctx context.Context) error {
	cat, err := w.activeCatalog()
	if err != nil {
		return err
	}

	if w.cfg.MaxRuns == 0 && w.cfg.MaxRunAge == 0 {
		Logger().Debug("prune: all retention bounds disabled, nothing to do")
		return nil
	}

	lockCtx, cancel := context.WithTimeout(ctx, w.cfg.LockTimeout)
	defer cancel()

	lockPath := filepath.Join(w.cfg.BaseDir, pruneLockFileName)
	fl := flock.New(lockPath)
	locked, err := fl.TryLockContext(lockCtx, pruneLockRetryInterval)
	if err != nil {
		return fmt.Errorf("acquire prune lock %s: %w", lockPath, err)
	}
	if !locked {
		return fmt.Errorf("acquire prune lock %s: lock not acquired", lockPath)
	}
	defer func() {
		// Close unlocks; the lock file itself stays on disk so another
		// process can never lock a path that is about to vanish.
		if closeErr := fl.Close(); closeErr != nil {
			Logger().Debug("failed to release prune lock", "path", fl.Path(), "err", closeErr)
		}
	}()

	candidates, err := cat.pruneCandidates(ctx, w.cfg.MaxRunAge, w.cfg.MaxRuns)
	if err != nil {
		return fmt.Errorf("select prune candidates: %w", err)
	}
	if len(candidates) == 0 {
		Logger().Debug("prune: no candidates")
		return nil
	}

	Logger().Debug("prune: removing stale runs", "count", len(candidates))

	// Remove run directories in parallel; each removal is independent and
	// IO-bound. Failures land in removeErrs per candidate so one stubborn
	// directory does not abort the sweep.
	removeErrs := make([]error, len(candidates))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(10)

	for i, row := range candidates {
		g.Go(func() error {
			if ctxErr := gCtx.Err(); ctxErr != nil {
				removeErrs[i] = ctxErr
				return nil
			}
			removeErrs[i] = fileutil.RemoveTree(row.Dir)
			return nil
		})
	}

	// errgroup always returns nil here since goroutines always return nil.
	_ = g.Wait()

	removedTags := make([]string, 0, len(candidates))
	var errs []error
	for i, row := range candidates {
		if removeErrs[i] != nil {
			errs = append(errs, fmt.Errorf("prune run %s: %w", row.Tag, removeErrs[i]))
			continue
		}
		removedTags = append(removedTags, row.Tag)
	}

	// Drop rows only for directories that are actually gone. RemoveTree
	// treats an already-missing directory as removed, so rows whose
	// directory vanished outside of fixtree are dropped here too.
	if err := cat.deleteRuns(ctx, removedTags); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	Logger().Debug("prune: complete", "removed", len(removedTags))
	return nil
}
