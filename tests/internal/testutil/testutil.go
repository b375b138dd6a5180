//go:build integration

// Package testutil provides shared helpers for integration test packages.
package testutil

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/giantswarm/fixtree"
)

// nameCounter is an atomic counter used by UniqueName to generate run names
// that are unique across parallel test goroutines.
var nameCounter atomic.Int64

// UniqueName returns a run name that is unique across all parallel tests.
// It combines the given prefix with a monotonically increasing counter value.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, nameCounter.Add(1))
}

// WriteTree materializes the given relative-path-to-content map under root,
// creating parent directories as needed. It fails the test on any error.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create parents for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

// ReadTree returns the relative-path-to-content map of all regular files
// under root. It fails the test on any error. Together with WriteTree this
// lets tests assert on whole trees.
func ReadTree(t *testing.T, root string) map[string]string {
	t.Helper()

	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		files[rel] = string(content)
		return nil
	})
	if err != nil {
		t.Fatalf("read tree %s: %v", root, err)
	}

	return files
}

// BeginRun starts a run with a unique name derived from prefix and fails the
// test on error. The caller is responsible for discarding the run.
//
//nolint:ireturn // Test helper returns Run matching the public API.
func BeginRun(ctx context.Context, t *testing.T, ws fixtree.Workspace, prefix string) fixtree.Run {
	t.Helper()

	run, err := ws.BeginRun(ctx, UniqueName(prefix))
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	return run
}

// BeginRunWithGuardedDiscard starts a run and registers a deferred safety-net
// discard that only fires if the caller has not already discarded the run
// explicitly. It returns the run and a discard function. Calling the discard
// function performs the explicit discard and disarms the safety net;
// subsequent calls are no-ops. The test fails immediately if the explicit
// discard returns an error.
//
//nolint:ireturn // Test helper returns Run matching the public API.
func BeginRunWithGuardedDiscard(
	ctx context.Context,
	t *testing.T,
	ws fixtree.Workspace,
	prefix string,
) (fixtree.Run, func()) {
	t.Helper()

	run := BeginRun(ctx, t, ws, prefix)

	var discardOnce sync.Once
	doDiscard := func() {
		if err := run.Discard(context.Background()); err != nil {
			t.Errorf("Discard() failed: %v", err)
		}
	}
	t.Cleanup(func() { discardOnce.Do(doDiscard) })

	discard := func() {
		t.Helper()
		discardOnce.Do(doDiscard)
	}

	return run, discard
}

// SetupTestLogging configures slog based on the FIXTREE_LOG_LEVEL environment
// variable. This only affects test runs - the library itself inherits the
// application's logging config.
func SetupTestLogging() {
	levelStr := os.Getenv("FIXTREE_LOG_LEVEL")
	if levelStr == "" {
		levelStr = "INFO"
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	fixtree.SetLogger(slog.Default().With("component", "fixtree"))
}

// RunTestMain sets up signal handling for graceful shutdown, runs all tests,
// then performs cleanup (close + temp dir removal). Returns the exit code.
func RunTestMain(m *testing.M, ws fixtree.Workspace, tmpDir string) int {
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			signal.Stop(sigCh) // Restore default handler so a second signal force-kills
			fmt.Fprintf(os.Stderr, "\nReceived %s, shutting down...\n", sig)
			if err := ws.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Close error: %v\n", err)
			}
			_ = os.RemoveAll(tmpDir)
			os.Exit(1)
		case <-done:
			return
		}
	}()

	code := m.Run()

	signal.Stop(sigCh)
	close(done)
	if err := ws.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Close error: %v\n", err)
	}
	_ = os.RemoveAll(tmpDir)

	return code
}

// SetupAndRun handles the standard TestMain boilerplate: flag parsing,
// logging setup, temp dir creation, workspace creation with WithBaseDir
// prepended, initialization, test execution, and cleanup. The created
// workspace is assigned to *ws so tests can reference it. This function
// calls os.Exit and never returns.
//
//nolint:gocritic // ptrToRefParam: pointer-to-interface needed to assign the created workspace back to the caller's variable.
func SetupAndRun(m *testing.M, ws *fixtree.Workspace, prefix string, opts ...fixtree.WorkspaceOption) {
	flag.Parse()
	SetupTestLogging()

	tmpDir, err := os.MkdirTemp("", prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	baseOpts := []fixtree.WorkspaceOption{
		fixtree.WithBaseDir(tmpDir),
	}
	baseOpts = append(baseOpts, opts...)

	created := fixtree.NewWorkspace(baseOpts...)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	if initErr := created.Initialize(ctx); initErr != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Initialize failed: %v\n", initErr)
		os.Exit(1)
	}

	cancel()

	*ws = created

	os.Exit(RunTestMain(m, created, tmpDir))
}
