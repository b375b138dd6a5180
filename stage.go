package fixtree

import (
	"context"
	"time"

	"github.com/giantswarm/fixtree/internal/core"
	"github.com/giantswarm/fixtree/internal/fixcache"
)

// StageConfig configures StageTree.
type StageConfig struct {
	// Source is the fixture tree to stage.
	Source string

	// CacheDir is the cache root, created if missing. Concurrent processes
	// may share it.
	CacheDir string

	// Timeout bounds the whole staging operation, including the wait for
	// the staging lock. Zero means DefaultStageTimeout.
	Timeout time.Duration
}

// StageResult describes the outcome of StageTree.
//
// StageResult is a type alias (not a named type) so that the fields of the
// underlying [fixcache.Result] are part of the public API: Path is the
// staged tree inside the cache, Hash the content hash of the source, and
// Created reports whether this call built the staging or reused an existing
// one.
type StageResult = fixcache.Result

// StageTree stages the tree at cfg.Source into the cache, keyed by a hash
// of the tree's contents, and returns the staged location. When a staging
// for the same hash already exists it is reused without copying; a change
// to any file in the source yields a new hash and a new staging.
//
// Staging is safe across concurrent processes sharing the cache directory:
// builders serialize on a file lock next to the staged tree and publish it
// with an atomic rename. The lock file stays on disk afterwards.
//
// Staged trees are shared between callers; treat them as read-only and
// CopyTree them into run directories.
func StageTree(ctx context.Context, cfg StageConfig) (*StageResult, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultStageTimeout
	}
	return fixcache.Stage(ctx, fixcache.Config{
		Source:   cfg.Source,
		CacheDir: cfg.CacheDir,
		Timeout:  timeout,
		Logger:   core.Logger(),
	})
}
