package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giantswarm/fixtree/internal/fileutil"
	"github.com/giantswarm/fixtree/internal/sentinel"
)

// workspaceState represents the lifecycle state of a Workspace.
type workspaceState uint32

const (
	workspaceCreated      workspaceState = iota // Zero value; NewWorkspaceWithConfig returns in this state
	workspaceInitializing                       // Initialize in progress
	workspaceReady                              // BeginRun and Prune allowed
	workspaceClosed                             // Close called
)

// ErrNotInitialized is returned by BeginRun and Prune when Initialize has
// not been called.
const ErrNotInitialized = sentinel.Error("workspace not initialized")

// ErrClosed is returned by workspace operations after Close.
const ErrClosed = sentinel.Error("workspace is closed")

// ErrInvalidRunName is returned by BeginRun when the run name cannot form a
// safe directory name.
const ErrInvalidRunName = sentinel.Error("invalid run name")

// catalogFileName is the run catalog database, relative to the base dir.
const catalogFileName = "runs.db"

// runsDirName is the directory holding all run directories, relative to the
// base dir.
const runsDirName = "runs"

// beginRunMaxAttempts bounds how many random tags BeginRun tries before
// giving up. Collisions on 32-bit random suffixes are vanishingly rare, so
// exhausting the attempts indicates a broken random source or a poisoned
// catalog rather than bad luck.
const beginRunMaxAttempts = 5

// Workspace manages tagged run directories under a shared base directory.
// It is safe for concurrent use by multiple goroutines.
//
// Configuration is stored in the cfg field and is immutable after
// construction. Runtime state (catalog, state) is kept in separate fields to
// maintain a clear boundary between configuration and mutable state.
//
// Synchronization strategy:
//   - state is an atomic workspaceState enum (created → initializing →
//     ready → closed). BeginRun and Prune read it with a single atomic load
//     for the fast path.
//   - catalog is an atomic.Pointer, set once during Initialize and read
//     lock-free by BeginRun, Prune, and the Run methods.
//   - initMu serializes concurrent Initialize calls.
type Workspace struct {
	cfg WorkspaceConfig

	catalog atomic.Pointer[catalog]

	state atomic.Uint32 // workspaceState; zero value is workspaceCreated

	// initMu serializes concurrent Initialize calls. Catalog reads use
	// atomic.Pointer and do not require initMu.
	initMu sync.Mutex
}

// loadState returns the current workspace lifecycle state.
func (w *Workspace) loadState() workspaceState {
	return workspaceState(w.state.Load())
}

// storeState sets the workspace lifecycle state.
func (w *Workspace) storeState(s workspaceState) {
	w.state.Store(uint32(s))
}

// NewWorkspaceWithConfig creates a Workspace with the provided
// configuration. This performs no I/O operations. Call Initialize before
// BeginRun.
//
// Panics if cfg.Validate() reports any errors. Invalid configuration is a
// programmer error that should be caught at construction time, similar to
// regexp.MustCompile.
func NewWorkspaceWithConfig(cfg WorkspaceConfig) *Workspace {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("fixtree: invalid workspace config: %v", err))
	}
	return &Workspace{cfg: cfg}
}

// Config returns the workspace configuration.
func (w *Workspace) Config() WorkspaceConfig {
	return w.cfg
}

// runsDir returns the directory that holds all run directories.
func (w *Workspace) runsDir() string {
	return filepath.Join(w.cfg.BaseDir, runsDirName)
}

// Initialize creates the base directory and opens the run catalog.
// Must be called before BeginRun. Safe to call multiple times: after a
// successful initialization, subsequent calls return nil immediately. If
// initialization fails, subsequent calls retry the initialization instead
// of returning a cached error permanently.
func (w *Workspace) Initialize(ctx context.Context) error {
	w.initMu.Lock()
	defer w.initMu.Unlock()

	switch w.loadState() {
	case workspaceReady:
		return nil
	case workspaceClosed:
		return ErrClosed
	case workspaceCreated, workspaceInitializing:
		// Continue with initialization (or retry after prior failure).
	}

	w.storeState(workspaceInitializing)

	// Defense in depth: validate config even though NewWorkspaceWithConfig
	// already panics on invalid config. This catches cases where Workspace
	// is constructed via struct literal (bypassing NewWorkspaceWithConfig).
	if err := w.cfg.Validate(); err != nil {
		w.storeState(workspaceCreated)
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := w.doInitialize(ctx); err != nil {
		// Roll back partial state so BeginRun sees a nil catalog
		// (ErrNotInitialized) and a subsequent Initialize call can retry
		// from scratch.
		if c := w.catalog.Swap(nil); c != nil {
			if closeErr := c.Close(); closeErr != nil {
				Logger().Warn("failed to close catalog during rollback", "error", closeErr)
			}
		}
		w.storeState(workspaceCreated)
		return fmt.Errorf("initialize: %w", err)
	}

	w.storeState(workspaceReady)
	return nil
}

// doInitialize contains the actual initialization logic.
func (w *Workspace) doInitialize(ctx context.Context) error {
	if err := fileutil.EnsureDir(w.cfg.BaseDir); err != nil {
		return fmt.Errorf("init base dir: %w", err)
	}
	if err := fileutil.EnsureDir(w.runsDir()); err != nil {
		return fmt.Errorf("init runs dir: %w", err)
	}

	cat, err := openCatalog(ctx, filepath.Join(w.cfg.BaseDir, catalogFileName))
	if err != nil {
		return fmt.Errorf("open run catalog: %w", err)
	}
	w.catalog.Store(cat)

	return nil
}

// activeCatalog returns the catalog when the workspace is ready, or the
// lifecycle error a caller should report otherwise.
func (w *Workspace) activeCatalog() (*catalog, error) {
	switch w.loadState() {
	case workspaceClosed:
		return nil, ErrClosed
	case workspaceReady:
		// Continue to catalog load.
	case workspaceCreated, workspaceInitializing:
		return nil, ErrNotInitialized
	}

	c := w.catalog.Load()
	if c == nil {
		return nil, ErrNotInitialized
	}
	return c, nil
}

// BeginRun allocates a fresh run directory tagged "<name>-<8 hex>", records
// it in the catalog, and resets the directory to an empty state. The tag is
// retried on the unlikely collision with an existing catalog row.
//
// A reset that cannot fully clear a pre-existing directory fails BeginRun:
// handing out a run directory with leftover content would break the
// isolation between runs that the tag exists to provide.
//
// Returns ErrNotInitialized before Initialize, ErrClosed after Close, and
// ErrInvalidRunName for names that cannot form a safe directory name.
func (w *Workspace) BeginRun(ctx context.Context, name string) (*Run, error) {
	cat, err := w.activeCatalog()
	if err != nil {
		return nil, err
	}

	if err := validateRunName(name); err != nil {
		return nil, err
	}

	var tag, dir string
	inserted := false
	for attempt := 0; attempt < beginRunMaxAttempts; attempt++ {
		tag = fmt.Sprintf("%s-%s", name, genTag())
		dir = filepath.Join(w.runsDir(), tag)

		insertErr := cat.insertRun(ctx, runRow{
			Tag:       tag,
			Name:      name,
			Dir:       dir,
			CreatedAt: time.Now(),
		})
		if errors.Is(insertErr, errTagExists) {
			Logger().Debug("run tag collision, retrying", "tag", tag)
			continue
		}
		if insertErr != nil {
			return nil, fmt.Errorf("record run %s: %w", tag, insertErr)
		}
		inserted = true
		break
	}
	if !inserted {
		return nil, fmt.Errorf("allocate unique tag for run %s: %d attempts exhausted", name, beginRunMaxAttempts)
	}

	res, resetErr := fileutil.ResetDir(dir)
	switch {
	case resetErr != nil:
		w.rollbackRun(ctx, cat, tag)
		return nil, fmt.Errorf("prepare run directory: %w", resetErr)
	case !res.Clean():
		w.rollbackRun(ctx, cat, tag)
		return nil, fmt.Errorf("prepare run directory: %w", res.CleanupErr)
	}

	Logger().Debug("run started", "tag", tag, "dir", dir)
	return &Run{tag: tag, dir: dir, ws: w}, nil
}

// rollbackRun removes the catalog row of a run whose directory could not be
// prepared. Failures only warn: a stale row is harmless and the pruning
// sweep drops rows whose directory is missing.
func (w *Workspace) rollbackRun(ctx context.Context, cat *catalog, tag string) {
	if err := cat.deleteRun(ctx, tag); err != nil {
		Logger().Warn("failed to roll back run row", "tag", tag, "error", err)
	}
}

// Close releases the run catalog and marks the workspace closed. Safe to
// call multiple times (idempotent: the first call closes the catalog;
// subsequent calls return nil). Run directories stay on disk for later
// inspection and pruning.
func (w *Workspace) Close() error {
	// Atomic store: every goroutine that subsequently loads the state (in
	// BeginRun, Prune, activeCatalog) observes workspaceClosed.
	w.storeState(workspaceClosed)

	c := w.catalog.Swap(nil)
	if c == nil {
		return nil
	}
	if err := c.Close(); err != nil {
		return fmt.Errorf("close run catalog: %w", err)
	}
	return nil
}

// validateRunName rejects names that cannot safely become part of a
// directory name.
func validateRunName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidRunName)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: name %q must not contain path separators", ErrInvalidRunName, name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: name %q must not be a dot segment", ErrInvalidRunName, name)
	}
	return nil
}

// genTag generates a random 8-character hex suffix for run tags.
func genTag() string {
	return fmt.Sprintf(
		"%08x",
		rand.Uint32(), //nolint:gosec // G404: run tags need uniqueness, not cryptographic strength
	)
}
