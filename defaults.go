package fixtree

import "time"

// Default configuration values for NewWorkspace and StageTree.
// These constants are exported so callers can reference the defaults
// when building custom configurations relative to them (e.g.,
// 2 * DefaultLockTimeout).
const (
	// DefaultBaseDirName is the directory name under the system temp
	// directory where run data is stored. The full path is computed
	// as filepath.Join(os.TempDir(), DefaultBaseDirName).
	DefaultBaseDirName = "fixtree"

	// DefaultMaxRuns is how many of the newest unkept runs survive a
	// pruning sweep. Set to 0 via WithMaxRuns to disable the count bound.
	DefaultMaxRuns = 32

	// DefaultMaxRunAge is how old an unkept run may grow before a pruning
	// sweep removes it. Set to 0 via WithMaxRunAge to disable the age
	// bound.
	DefaultMaxRunAge = 168 * time.Hour

	// DefaultLockTimeout is how long Prune waits for the cross-process
	// prune lock before giving up.
	DefaultLockTimeout = 30 * time.Second

	// DefaultStageTimeout is the overall timeout for StageTree when
	// StageConfig.Timeout is zero. It covers hashing the source tree,
	// waiting for the staging lock, and building the staged copy.
	DefaultStageTimeout = 2 * time.Minute
)
