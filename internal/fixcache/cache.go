// Package fixcache stages fixture trees into a content-addressed cache
// shared across processes. A tree is staged at most once per content hash:
// later callers, including concurrent ones in other processes, reuse the
// staged copy. Cross-process safety comes from an exclusive file lock per
// cache entry.
package fixcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	cp "github.com/otiai10/copy"

	"github.com/giantswarm/fixtree/internal/fileutil"
)

// Config holds configuration for staging a fixture tree.
type Config struct {
	Source   string        // Fixture tree to stage
	CacheDir string        // Cache root, created if missing
	Timeout  time.Duration // Overall timeout for hashing, locking, and building
	Logger   *slog.Logger  // Logger for operational messages (nil uses slog.Default)
}

// logger returns the configured logger or falls back to the default.
func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// validate checks that all required Config fields are set and returns an
// error describing the first missing or invalid field.
func (c Config) validate() error {
	if c.Source == "" {
		return errors.New("source must not be empty")
	}
	if c.CacheDir == "" {
		return errors.New("cache dir must not be empty")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

// Result contains the outcome of staging a fixture tree.
type Result struct {
	Path    string // Path of the staged tree inside the cache
	Hash    string // Content hash of the source tree
	Created bool   // true if the tree was staged now, false if an existing staging was reused
}

// Stage returns a cached copy of the source tree keyed by its content hash,
// creating it when no staging for that hash exists yet. The staged tree is
// shared: callers must treat it as read-only and copy it into their own
// directories before modifying anything.
//
// Concurrent staging of the same source from multiple processes is safe: a
// per-entry file lock serializes builds, and whoever loses the race reuses
// the winner's result.
func Stage(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.logger()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	hash, err := fileutil.HashTree(cfg.Source, nil)
	if err != nil {
		return nil, fmt.Errorf("hash source tree: %w", err)
	}

	if err := fileutil.EnsureDir(cfg.CacheDir); err != nil {
		return nil, fmt.Errorf("prepare cache dir: %w", err)
	}

	stagePath := filepath.Join(cfg.CacheDir, fmt.Sprintf("fix-%s", hash))

	// Fast path: the staging already exists, no lock needed.
	if _, err := os.Stat(stagePath); err == nil {
		logger.Debug("using existing staged tree", "path", stagePath, "hash", hash)
		return &Result{Path: stagePath, Hash: hash, Created: false}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat staged tree %s: %w", stagePath, err)
	}

	lockPath := stagePath + ".lock"
	logger.Debug("acquiring staging lock", "lock_path", lockPath)
	lock, err := lockStaging(ctx, logger, lockPath)
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	defer lock.release()

	// Re-check: another process may have staged the tree while we waited.
	if _, err := os.Stat(stagePath); err == nil {
		logger.Debug("using existing staged tree (created while waiting)", "path", stagePath, "hash", hash)
		return &Result{Path: stagePath, Hash: hash, Created: false}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat staged tree %s: %w", stagePath, err)
	}

	logger.Info("staging fixture tree", "source", cfg.Source, "hash", hash)
	if err := buildStaging(ctx, cfg, stagePath); err != nil {
		return nil, fmt.Errorf("stage tree: %w", err)
	}

	return &Result{Path: stagePath, Hash: hash, Created: true}, nil
}

// buildStaging copies the source tree into a temp directory next to the
// final path and renames it into place, so a crash mid-copy never leaves a
// half-staged tree under the cache key.
func buildStaging(ctx context.Context, cfg Config, stagePath string) error {
	logger := cfg.logger()
	startTime := time.Now()

	tempDir, err := os.MkdirTemp(cfg.CacheDir, "fix-build-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		// No-op after a successful rename, removes the partial build
		// otherwise.
		if rmErr := os.RemoveAll(tempDir); rmErr != nil {
			logger.Debug("failed to remove temp dir", "dir", tempDir, "err", rmErr)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	opts := cp.Options{
		OnSymlink: func(string) cp.SymlinkAction { return cp.Deep },
	}
	if err := cp.Copy(cfg.Source, tempDir, opts); err != nil {
		return fmt.Errorf("copy source tree: %w", err)
	}

	// MkdirTemp creates the directory 0o700; widen it to the usual mode
	// before publishing.
	if err := os.Chmod(tempDir, 0o755); err != nil {
		return fmt.Errorf("chmod staged tree: %w", err)
	}

	if err := os.Rename(tempDir, stagePath); err != nil {
		return fmt.Errorf("move staged tree into place: %w", err)
	}

	logger.Info("fixture tree staged", "path", stagePath, "elapsed", time.Since(startTime).Round(time.Millisecond))
	return nil
}
