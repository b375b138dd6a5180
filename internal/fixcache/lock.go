package fixcache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryInterval is the interval between consecutive attempts to acquire
// a staging lock. 50ms keeps the wait after the holder releases short
// without busy-polling the filesystem.
const lockRetryInterval = 50 * time.Millisecond

// stageLock guards the build of one staged tree against concurrent
// processes. It wraps an exclusive flock on a sibling of the staging path.
type stageLock struct {
	fl  *flock.Flock
	log *slog.Logger
}

// lockStaging acquires the exclusive lock at lockPath, retrying at
// lockRetryInterval until it succeeds or ctx is done.
func lockStaging(ctx context.Context, log *slog.Logger, lockPath string) (*stageLock, error) {
	fl := flock.New(lockPath)

	locked, err := fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquiring staging lock %s: %w", lockPath, err)
	}
	if !locked {
		// TryLockContext should return an error when it fails, but handle
		// the case where it returns (false, nil) unexpectedly.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquiring staging lock %s: %w", lockPath, ctx.Err())
		}
		return nil, fmt.Errorf("acquiring staging lock %s: lock not acquired", lockPath)
	}

	return &stageLock{fl: fl, log: log}, nil
}

// release unlocks and closes the lock file descriptor. The lock file is
// intentionally left on disk: removing it could invalidate a lock another
// process acquired on the same path in the meantime. Close calls Unlock
// internally. Failures are logged at debug level only, release is
// best-effort.
func (l *stageLock) release() {
	if l == nil || l.fl == nil {
		return
	}
	if err := l.fl.Close(); err != nil {
		l.log.Debug("failed to release staging lock", "path", l.fl.Path(), "err", err)
	}
}
