package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRun_Discard(t *testing.T) {
	t.Parallel()

	t.Run("removes directory and frees the tag", func(t *testing.T) {
		t.Parallel()
		w := newTestWorkspace(t)
		run, err := w.BeginRun(context.Background(), "demo")
		if err != nil {
			t.Fatalf("BeginRun() error: %v", err)
		}

		payload := filepath.Join(run.Dir(), "scratch.txt")
		if err := os.WriteFile(payload, []byte("data"), 0o644); err != nil {
			t.Fatalf("write payload: %v", err)
		}

		if err := run.Discard(context.Background()); err != nil {
			t.Fatalf("Discard() error: %v", err)
		}

		if _, err := os.Stat(run.Dir()); !os.IsNotExist(err) {
			t.Errorf("run dir still present after Discard: stat error = %v", err)
		}

		// The catalog row is gone, so the tag can be reused.
		cat, err := w.activeCatalog()
		if err != nil {
			t.Fatalf("activeCatalog() error: %v", err)
		}
		if err := cat.markKept(context.Background(), run.ID()); !errors.Is(err, errRunNotFound) {
			t.Errorf("markKept() error = %v, want %v", err, errRunNotFound)
		}
	})

	t.Run("second Discard reports the run gone", func(t *testing.T) {
		t.Parallel()
		w := newTestWorkspace(t)
		run, err := w.BeginRun(context.Background(), "demo")
		if err != nil {
			t.Fatalf("BeginRun() error: %v", err)
		}

		if err := run.Discard(context.Background()); err != nil {
			t.Fatalf("first Discard() error: %v", err)
		}
		if err := run.Discard(context.Background()); !errors.Is(err, ErrRunDiscarded) {
			t.Errorf("second Discard() error = %v, want %v", err, ErrRunDiscarded)
		}
	})

	t.Run("accessors stay readable after Discard", func(t *testing.T) {
		t.Parallel()
		w := newTestWorkspace(t)
		run, err := w.BeginRun(context.Background(), "demo")
		if err != nil {
			t.Fatalf("BeginRun() error: %v", err)
		}
		tag, dir := run.ID(), run.Dir()

		if err := run.Discard(context.Background()); err != nil {
			t.Fatalf("Discard() error: %v", err)
		}

		if run.ID() != tag || run.Dir() != dir {
			t.Errorf("accessors changed after Discard: ID %q Dir %q", run.ID(), run.Dir())
		}
	})

	t.Run("after workspace Close", func(t *testing.T) {
		t.Parallel()
		w := NewWorkspaceWithConfig(testConfig(t))
		if err := w.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize() error: %v", err)
		}
		run, err := w.BeginRun(context.Background(), "demo")
		if err != nil {
			t.Fatalf("BeginRun() error: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close() error: %v", err)
		}

		if err := run.Discard(context.Background()); !errors.Is(err, ErrClosed) {
			t.Errorf("Discard() error = %v, want %v", err, ErrClosed)
		}
	})
}

func TestRun_Keep(t *testing.T) {
	t.Parallel()

	t.Run("marks the run kept", func(t *testing.T) {
		t.Parallel()
		w := newTestWorkspace(t)
		run, err := w.BeginRun(context.Background(), "demo")
		if err != nil {
			t.Fatalf("BeginRun() error: %v", err)
		}

		if err := run.Keep(context.Background()); err != nil {
			t.Fatalf("Keep() error: %v", err)
		}

		// Keeping twice is harmless.
		if err := run.Keep(context.Background()); err != nil {
			t.Errorf("second Keep() error: %v", err)
		}
	})

	t.Run("after Discard", func(t *testing.T) {
		t.Parallel()
		w := newTestWorkspace(t)
		run, err := w.BeginRun(context.Background(), "demo")
		if err != nil {
			t.Fatalf("BeginRun() error: %v", err)
		}
		if err := run.Discard(context.Background()); err != nil {
			t.Fatalf("Discard() error: %v", err)
		}

		if err := run.Keep(context.Background()); !errors.Is(err, ErrRunDiscarded) {
			t.Errorf("Keep() error = %v, want %v", err, ErrRunDiscarded)
		}
	})

	t.Run("kept run can still be discarded", func(t *testing.T) {
		t.Parallel()
		w := newTestWorkspace(t)
		run, err := w.BeginRun(context.Background(), "demo")
		if err != nil {
			t.Fatalf("BeginRun() error: %v", err)
		}
		if err := run.Keep(context.Background()); err != nil {
			t.Fatalf("Keep() error: %v", err)
		}

		if err := run.Discard(context.Background()); err != nil {
			t.Errorf("Discard() of kept run error: %v", err)
		}
		if _, err := os.Stat(run.Dir()); !os.IsNotExist(err) {
			t.Errorf("run dir still present after Discard: stat error = %v", err)
		}
	})
}
