package fixtree

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/giantswarm/fixtree/internal/core"
)

// Singleton state for NewWorkspace. The first call creates the workspace;
// subsequent calls return the same instance and log a warning.
//
// singletonMu protects both singletonWs and singletonOnce so that
// resetForTesting (used in tests) is concurrency-safe with NewWorkspace.
var (
	singletonMu   sync.Mutex
	singletonWs   Workspace
	singletonOnce sync.Once
)

// Compile-time interface satisfaction checks.
var (
	_ Workspace = (*workspaceWrapper)(nil)
	_ Run       = (*runWrapper)(nil)
)

// workspaceWrapper wraps core.Workspace to implement the Workspace
// interface. It serves as the concrete singleton implementation returned by
// NewWorkspace. This allows returning the Run interface from BeginRun
// instead of *core.Run.
//
// The core.Workspace is stored as a named (unexported) field rather than
// embedded to prevent callers from using type assertions to access internal
// methods (e.g., Config) that are not part of the public Workspace
// interface.
type workspaceWrapper struct {
	ws *core.Workspace
}

// Initialize wraps core.Workspace.Initialize.
func (w *workspaceWrapper) Initialize(ctx context.Context) error {
	return w.ws.Initialize(ctx)
}

// BeginRun implements Workspace.BeginRun, returning the Run interface.
//
//nolint:ireturn // Returns Run interface by design for testability (mockable).
func (w *workspaceWrapper) BeginRun(ctx context.Context, name string) (Run, error) {
	run, err := w.ws.BeginRun(ctx, name)
	if err != nil {
		return nil, err
	}
	return &runWrapper{run: run}, nil
}

// Prune wraps core.Workspace.Prune.
func (w *workspaceWrapper) Prune(ctx context.Context) error {
	return w.ws.Prune(ctx)
}

// Close wraps core.Workspace.Close.
func (w *workspaceWrapper) Close() error {
	return w.ws.Close()
}

// runWrapper wraps core.Run to implement the Run interface.
//
// The core.Run is stored as a named (unexported) field rather than embedded
// to prevent callers from using type assertions to reach the underlying
// type.
type runWrapper struct {
	run *core.Run
}

// ID returns the run tag. Delegates to the underlying core.Run.
func (r *runWrapper) ID() string {
	return r.run.ID()
}

// Dir returns the absolute run directory. Delegates to the underlying
// core.Run.
func (r *runWrapper) Dir() string {
	return r.run.Dir()
}

// Keep wraps core.Run.Keep.
func (r *runWrapper) Keep(ctx context.Context) error {
	return r.run.Keep(ctx)
}

// Discard wraps core.Run.Discard.
func (r *runWrapper) Discard(ctx context.Context) error {
	return r.run.Discard(ctx)
}

// defaultWorkspaceConfig returns a workspaceConfig populated with all
// default values. Both NewWorkspace and test helpers use this to avoid
// duplicating the default field assignments.
func defaultWorkspaceConfig() workspaceConfig {
	return workspaceConfig{core.WorkspaceConfig{
		BaseDir:     filepath.Join(os.TempDir(), DefaultBaseDirName),
		MaxRuns:     DefaultMaxRuns,
		MaxRunAge:   DefaultMaxRunAge,
		LockTimeout: DefaultLockTimeout,
	}}
}

// resetForTesting resets the singleton state so that the next call to
// NewWorkspace creates a fresh workspace. This follows the Go stdlib
// pattern (e.g., net/http/internal) for enabling test isolation within a
// single binary. It must only be called from tests.
func resetForTesting() {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	singletonWs = nil
	singletonOnce = sync.Once{}
}

// NewWorkspace returns the process-level singleton Workspace.
//
// The first call creates the workspace with the given options and stores
// it. Subsequent calls return the same instance; options are ignored and a
// warning is logged. This performs no I/O operations; call Initialize
// before BeginRun.
//
// The singleton is never reset after Close; callers that need a fresh
// workspace must restart the process (or, in tests, use a separate test
// binary).
//
// Panics if any option receives an invalid value. See individual With*
// functions for constraints.
//
//nolint:ireturn // Returns Workspace interface by design for testability (mockable).
func NewWorkspace(opts ...WorkspaceOption) Workspace {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	// created is written inside the Do closure and read after Do returns.
	// sync.Once guarantees the closure completes (happens-before) Do returns,
	// so the write is visible here without additional synchronization.
	created := false
	singletonOnce.Do(func() {
		cfg := defaultWorkspaceConfig()
		for _, opt := range opts {
			opt(&cfg)
		}
		singletonWs = &workspaceWrapper{ws: core.NewWorkspaceWithConfig(cfg.toCoreConfig())}
		created = true
	})
	if !created {
		core.Logger().Warn("NewWorkspace called more than once; returning existing singleton (options ignored)")
	}
	return singletonWs
}
