package fixtree

import "context"

// Workspace hands out tagged run directories under a shared base directory
// and prunes stale ones.
//
// Callers must follow this lifecycle ordering:
//
//	NewWorkspace → Initialize → BeginRun/Prune (repeatable) → Close
//
// Initialize must be called before BeginRun. Close is safe to call at any
// point, including before Initialize. See each method's documentation for
// detailed error conditions.
type Workspace interface {
	// Initialize creates the base directory and opens the run catalog.
	// Must be called before BeginRun. Safe to call multiple times: after a
	// successful initialization, subsequent calls return nil immediately.
	// If initialization fails, subsequent calls retry instead of returning
	// a cached error permanently.
	Initialize(ctx context.Context) error

	// BeginRun allocates a fresh run directory tagged "<name>-<8 hex>",
	// records it in the catalog, and resets it to an empty state before
	// handing it out. Every call returns a distinct directory; runs never
	// share state through their directories.
	//
	// Returns ErrNotInitialized if Initialize has not been called.
	// Returns ErrClosed after Close.
	// Returns ErrInvalidRunName for names that cannot form a safe
	// directory name (empty, containing path separators, or a dot
	// segment).
	BeginRun(ctx context.Context, name string) (Run, error)

	// Prune removes unkept runs that fall outside the retention bounds:
	// older than the configured maximum age, or beyond the newest maximum
	// count (a zero bound is disabled; with both disabled Prune is a
	// no-op). Runs marked with Keep are never touched.
	//
	// Only one process prunes a base directory at a time; the sweep holds
	// a file lock bounded by the configured lock timeout. Removal is
	// best-effort per run: failures are joined into the returned error and
	// the affected runs become candidates again on the next sweep.
	Prune(ctx context.Context) error

	// Close releases the run catalog. Safe to call multiple times and
	// before Initialize. Run directories stay on disk for later inspection
	// and pruning by another workspace over the same base directory.
	Close() error
}

// Run is one tagged run directory handed out by Workspace.BeginRun. ID and
// Dir are plain accessors and stay readable after Discard.
type Run interface {
	// ID returns the run tag, "<name>-<8 hex>".
	ID() string

	// Dir returns the absolute run directory.
	Dir() string

	// Keep marks the run as exempt from pruning. The directory survives
	// every future Prune until the run is discarded explicitly.
	//
	// Returns ErrRunDiscarded after Discard.
	Keep(ctx context.Context) error

	// Discard deletes the run directory and its catalog entry. Discard is
	// one-shot: any call after the first returns ErrRunDiscarded, even
	// when the first attempt failed partway (the pruning sweep collects
	// leftovers). Using defer run.Discard(ctx) is safe; the error is
	// informational.
	Discard(ctx context.Context) error
}
