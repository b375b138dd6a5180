package core

import (
	"errors"
	"fmt"
	"time"
)

// WorkspaceConfig holds configuration for Workspace instances.
//
// Concurrency contract: all fields are immutable after construction via
// NewWorkspaceWithConfig. BeginRun and Prune read them without
// synchronization, relying on this guarantee.
type WorkspaceConfig struct {
	// BaseDir is the root directory of the workspace. The run catalog, the
	// prune lock, and all run directories live underneath it.
	BaseDir string

	// MaxRuns is the number of most recent unkept runs Prune retains.
	// 0 disables the count bound. Default: 32.
	MaxRuns int

	// MaxRunAge is the age beyond which unkept runs become prune
	// candidates. 0 disables the age bound. Default: 7 days.
	MaxRunAge time.Duration

	// LockTimeout bounds how long Prune waits for the cross-process prune
	// lock. Default: 30 seconds.
	LockTimeout time.Duration
}

// Validate checks all WorkspaceConfig invariants and returns an error
// describing every violation found. It uses errors.Join to report multiple
// issues at once, allowing callers to fix all problems in a single pass
// rather than playing whack-a-mole with one error at a time.
//
// Validate is called by NewWorkspaceWithConfig (which panics on error, since
// invalid config is a programmer error) and by Initialize (which returns the
// error, providing defense in depth).
func (c WorkspaceConfig) Validate() error {
	var errs []error

	if c.BaseDir == "" {
		errs = append(errs, errors.New("base directory must not be empty"))
	}
	if c.MaxRuns < 0 {
		errs = append(errs, fmt.Errorf("max runs must not be negative, got %d", c.MaxRuns))
	}
	if c.MaxRunAge < 0 {
		errs = append(errs, fmt.Errorf("max run age must not be negative, got %s", c.MaxRunAge))
	}
	if c.LockTimeout <= 0 {
		errs = append(errs, fmt.Errorf("lock timeout must be greater than 0, got %s", c.LockTimeout))
	}

	return errors.Join(errs...)
}
