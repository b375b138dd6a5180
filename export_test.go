package fixtree

import "time"

// ResetForTesting resets the singleton workspace state so that the next
// call to NewWorkspace creates a fresh instance. This is exported only
// for use in test packages (package fixtree_test).
func ResetForTesting() { resetForTesting() }

// ConfigSnapshot holds a copy of workspaceConfig fields for test assertions.
// Exported only via export_test.go so that the _test package can verify
// option closures actually mutate the config without accessing internals.
type ConfigSnapshot struct {
	BaseDir     string
	MaxRuns     int
	MaxRunAge   time.Duration
	LockTimeout time.Duration
}

// ApplyOptionsForTesting creates a default workspaceConfig, applies the
// given options, and returns a ConfigSnapshot of the result. This tests the
// option closures directly without touching the singleton.
func ApplyOptionsForTesting(opts ...WorkspaceOption) ConfigSnapshot {
	cfg := defaultWorkspaceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return ConfigSnapshot{
		BaseDir:     cfg.BaseDir,
		MaxRuns:     cfg.MaxRuns,
		MaxRunAge:   cfg.MaxRunAge,
		LockTimeout: cfg.LockTimeout,
	}
}
