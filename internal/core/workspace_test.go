package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

// testConfig returns a valid workspace configuration rooted in a fresh temp
// dir.
func testConfig(t *testing.T) WorkspaceConfig {
	t.Helper()
	return WorkspaceConfig{
		BaseDir:     filepath.Join(t.TempDir(), "base"),
		MaxRuns:     32,
		MaxRunAge:   168 * time.Hour,
		LockTimeout: 30 * time.Second,
	}
}

// newTestWorkspace returns an initialized workspace that is closed when the
// test ends.
func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	w := NewWorkspaceWithConfig(testConfig(t))
	if err := w.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	t.Cleanup(func() {
		if err := w.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	})
	return w
}

func TestNewWorkspaceWithConfig_PanicsOnInvalidConfig(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for invalid config, got none")
		}
		msg, ok := r.(string)
		if !ok || !strings.Contains(msg, "invalid workspace config") {
			t.Errorf("panic = %v, want message containing %q", r, "invalid workspace config")
		}
	}()

	NewWorkspaceWithConfig(WorkspaceConfig{})
}

func TestWorkspace_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("operations before Initialize", func(t *testing.T) {
		t.Parallel()
		w := NewWorkspaceWithConfig(testConfig(t))

		if _, err := w.BeginRun(context.Background(), "demo"); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("BeginRun() error = %v, want %v", err, ErrNotInitialized)
		}
		if err := w.Prune(context.Background()); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("Prune() error = %v, want %v", err, ErrNotInitialized)
		}
	})

	t.Run("Initialize is idempotent", func(t *testing.T) {
		t.Parallel()
		w := newTestWorkspace(t)

		if err := w.Initialize(context.Background()); err != nil {
			t.Errorf("second Initialize() error: %v", err)
		}
	})

	t.Run("operations after Close", func(t *testing.T) {
		t.Parallel()
		w := NewWorkspaceWithConfig(testConfig(t))
		if err := w.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize() error: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close() error: %v", err)
		}

		if _, err := w.BeginRun(context.Background(), "demo"); !errors.Is(err, ErrClosed) {
			t.Errorf("BeginRun() error = %v, want %v", err, ErrClosed)
		}
		if err := w.Prune(context.Background()); !errors.Is(err, ErrClosed) {
			t.Errorf("Prune() error = %v, want %v", err, ErrClosed)
		}
		if err := w.Initialize(context.Background()); !errors.Is(err, ErrClosed) {
			t.Errorf("Initialize() error = %v, want %v", err, ErrClosed)
		}
	})

	t.Run("Close is idempotent", func(t *testing.T) {
		t.Parallel()
		w := NewWorkspaceWithConfig(testConfig(t))
		if err := w.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize() error: %v", err)
		}

		if err := w.Close(); err != nil {
			t.Fatalf("first Close() error: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Errorf("second Close() error: %v", err)
		}
	})

	t.Run("Close before Initialize", func(t *testing.T) {
		t.Parallel()
		w := NewWorkspaceWithConfig(testConfig(t))

		if err := w.Close(); err != nil {
			t.Errorf("Close() on uninitialized workspace error: %v", err)
		}
	})

	t.Run("failed initialization can be retried", func(t *testing.T) {
		t.Parallel()
		blocker := filepath.Join(t.TempDir(), "blocker")
		if err := os.WriteFile(blocker, nil, 0o644); err != nil {
			t.Fatalf("write blocker file: %v", err)
		}

		cfg := testConfig(t)
		cfg.BaseDir = filepath.Join(blocker, "base")
		w := NewWorkspaceWithConfig(cfg)

		if err := w.Initialize(context.Background()); err == nil {
			t.Fatal("Initialize() succeeded with base dir blocked by a file")
		}
		if _, err := w.BeginRun(context.Background(), "demo"); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("BeginRun() error = %v, want %v", err, ErrNotInitialized)
		}

		// Unblock the path; the next Initialize starts from scratch.
		if err := os.Remove(blocker); err != nil {
			t.Fatalf("remove blocker file: %v", err)
		}
		if err := w.Initialize(context.Background()); err != nil {
			t.Fatalf("retried Initialize() error: %v", err)
		}
		defer w.Close() //nolint:errcheck // best-effort close at test end

		if _, err := w.BeginRun(context.Background(), "demo"); err != nil {
			t.Errorf("BeginRun() after retried Initialize error: %v", err)
		}
	})

	t.Run("struct literal without config fails Initialize", func(t *testing.T) {
		t.Parallel()
		w := &Workspace{}

		err := w.Initialize(context.Background())
		if err == nil {
			t.Fatal("Initialize() succeeded with zero config")
		}
		if !strings.Contains(err.Error(), "invalid config") {
			t.Errorf("error = %v, want mention of invalid config", err)
		}
	})
}

var runTagPattern = regexp.MustCompile(`^demo-[0-9a-f]{8}$`)

func TestWorkspace_BeginRun(t *testing.T) {
	t.Parallel()

	t.Run("creates an empty tagged directory", func(t *testing.T) {
		t.Parallel()
		w := newTestWorkspace(t)

		run, err := w.BeginRun(context.Background(), "demo")
		if err != nil {
			t.Fatalf("BeginRun() error: %v", err)
		}

		if !runTagPattern.MatchString(run.ID()) {
			t.Errorf("ID() = %q, want match for %q", run.ID(), runTagPattern)
		}
		if want := filepath.Join(w.Config().BaseDir, "runs", run.ID()); run.Dir() != want {
			t.Errorf("Dir() = %q, want %q", run.Dir(), want)
		}

		entries, err := os.ReadDir(run.Dir())
		if err != nil {
			t.Fatalf("read run dir: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("run dir has %d entries, want empty", len(entries))
		}
	})

	t.Run("tags are unique across runs", func(t *testing.T) {
		t.Parallel()
		w := newTestWorkspace(t)

		seen := make(map[string]bool)
		for range 5 {
			run, err := w.BeginRun(context.Background(), "demo")
			if err != nil {
				t.Fatalf("BeginRun() error: %v", err)
			}
			if seen[run.ID()] {
				t.Fatalf("duplicate run tag %q", run.ID())
			}
			seen[run.ID()] = true
		}
	})

	t.Run("runs with different names share the workspace", func(t *testing.T) {
		t.Parallel()
		w := newTestWorkspace(t)

		first, err := w.BeginRun(context.Background(), "alpha")
		if err != nil {
			t.Fatalf("BeginRun(alpha) error: %v", err)
		}
		second, err := w.BeginRun(context.Background(), "beta")
		if err != nil {
			t.Fatalf("BeginRun(beta) error: %v", err)
		}

		if filepath.Dir(first.Dir()) != filepath.Dir(second.Dir()) {
			t.Errorf("runs live in different parents: %q vs %q", first.Dir(), second.Dir())
		}
	})
}

func TestWorkspace_BeginRun_InvalidNames(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"empty name":           "",
		"forward slash":        "a/b",
		"backslash":            `a\b`,
		"current dir segment":  ".",
		"parent dir segment":   "..",
		"absolute path prefix": "/etc",
	}

	w := newTestWorkspace(t)
	for label, name := range tests {
		t.Run(label, func(t *testing.T) {
			_, err := w.BeginRun(context.Background(), name)
			if !errors.Is(err, ErrInvalidRunName) {
				t.Errorf("BeginRun(%q) error = %v, want %v", name, err, ErrInvalidRunName)
			}
		})
	}
}

func TestValidateRunName(t *testing.T) {
	t.Parallel()

	valid := []string{"demo", "my-test", "parser_v2", "TestFoo", "run.01", "..."}
	for _, name := range valid {
		if err := validateRunName(name); err != nil {
			t.Errorf("validateRunName(%q) error: %v, want nil", name, err)
		}
	}

	invalid := []string{"", "a/b", `a\b`, ".", "..", "nested/deep/name"}
	for _, name := range invalid {
		if err := validateRunName(name); !errors.Is(err, ErrInvalidRunName) {
			t.Errorf("validateRunName(%q) error = %v, want %v", name, err, ErrInvalidRunName)
		}
	}
}

func TestGenTag(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^[0-9a-f]{8}$`)
	for range 100 {
		tag := genTag()
		if !pattern.MatchString(tag) {
			t.Fatalf("genTag() = %q, want 8 lowercase hex characters", tag)
		}
	}
}
