package fixtree

import (
	"fmt"
	"time"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("fixtree: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("fixtree: %s must not be empty", name))
	}
}

// WorkspaceOption configures a Workspace during construction via
// NewWorkspace. Each With* function returns a WorkspaceOption that sets a
// specific field.
//
// Several With* functions panic on invalid input (empty paths, negative
// bounds, non-positive durations). These panics are intentional: option
// values are typically compile-time constants or package-level variables, so
// an invalid value indicates a programmer error rather than a runtime
// condition. The pattern mirrors [regexp.MustCompile]: fail fast during
// initialization instead of returning errors that would be universally fatal
// anyway.
type WorkspaceOption func(*workspaceConfig)

// WithBaseDir sets the base directory holding the run catalog and all run
// directories. Useful in CI environments where multiple projects share a
// machine and need isolated directories to prevent conflicts.
// If not set, defaults to DefaultBaseDirName under the system temp
// directory.
// Panics if dir is empty.
func WithBaseDir(dir string) WorkspaceOption {
	requireNonEmpty("base directory", dir)
	return func(c *workspaceConfig) {
		c.BaseDir = dir
	}
}

// WithMaxRuns sets how many of the newest unkept runs survive a pruning
// sweep. A value of 0 disables the count bound: runs are then pruned by age
// only.
//
// Default: 32.
//
// Panics if n < 0.
func WithMaxRuns(n int) WorkspaceOption {
	if n < 0 {
		panic(fmt.Sprintf("fixtree: max runs must not be negative, got %d", n))
	}
	return func(c *workspaceConfig) {
		c.MaxRuns = n
	}
}

// WithMaxRunAge sets how old an unkept run may grow before a pruning sweep
// removes it. A value of 0 disables the age bound: runs are then pruned by
// count only.
//
// Default: 168h (7 days).
//
// Panics if d < 0.
func WithMaxRunAge(d time.Duration) WorkspaceOption {
	if d < 0 {
		panic(fmt.Sprintf("fixtree: max run age must not be negative, got %v", d))
	}
	return func(c *workspaceConfig) {
		c.MaxRunAge = d
	}
}

// WithLockTimeout sets how long Prune waits for the cross-process prune
// lock before giving up. Increase this when many processes share a base
// directory and sweeps are slow.
//
// Default: 30 seconds.
//
// Panics if d <= 0.
func WithLockTimeout(d time.Duration) WorkspaceOption {
	requirePositive("lock timeout", d)
	return func(c *workspaceConfig) {
		c.LockTimeout = d
	}
}
