package fixtree_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/giantswarm/fixtree"
)

func TestDiffTrees(t *testing.T) {
	t.Parallel()

	t.Run("classifies differences", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		want := t.TempDir()
		writeFiles(t, want, map[string]string{
			"same.txt":        "identical",
			"edited.txt":      "original",
			"only/in/want.md": "reference",
		})
		got := t.TempDir()
		writeFiles(t, got, map[string]string{
			"same.txt":   "identical",
			"edited.txt": "modified",
			"stray.tmp":  "leftover",
		})

		diff, err := fixtree.DiffTrees(ctx, got, want, nil)
		if err != nil {
			t.Fatalf("DiffTrees failed: %v", err)
		}

		wantMissing := []string{filepath.Join("only", "in", "want.md")}
		if !slices.Equal(diff.Missing, wantMissing) {
			t.Errorf("Missing = %v, want %v", diff.Missing, wantMissing)
		}
		if !slices.Equal(diff.Extra, []string{"stray.tmp"}) {
			t.Errorf("Extra = %v, want [stray.tmp]", diff.Extra)
		}
		if !slices.Equal(diff.Changed, []string{"edited.txt"}) {
			t.Errorf("Changed = %v, want [edited.txt]", diff.Changed)
		}
		if diff.InSync() {
			t.Error("InSync() = true for differing trees")
		}
	})

	t.Run("identical trees are in sync", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		files := map[string]string{
			"a.txt":     "one",
			"sub/b.txt": "two",
		}
		want := t.TempDir()
		writeFiles(t, want, files)
		got := t.TempDir()
		writeFiles(t, got, files)

		diff, err := fixtree.DiffTrees(ctx, got, want, nil)
		if err != nil {
			t.Fatalf("DiffTrees failed: %v", err)
		}
		if !diff.InSync() {
			t.Errorf("InSync() = false: missing=%v extra=%v changed=%v",
				diff.Missing, diff.Extra, diff.Changed)
		}
	})

	t.Run("extension filter narrows the comparison", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		want := t.TempDir()
		writeFiles(t, want, map[string]string{
			"config.yaml": "threads: 4",
			"run.log":     "old log",
		})
		got := t.TempDir()
		writeFiles(t, got, map[string]string{
			"config.yaml": "threads: 4",
			"run.log":     "new log",
			"debug.LOG":   "noise",
		})

		// The leading dot is optional and matching ignores case, so the
		// .LOG stray is filtered out too.
		diff, err := fixtree.DiffTrees(ctx, got, want, &fixtree.DiffOptions{
			Extensions: []string{"yaml"},
		})
		if err != nil {
			t.Fatalf("DiffTrees failed: %v", err)
		}
		if !diff.InSync() {
			t.Errorf("InSync() = false with filter: missing=%v extra=%v changed=%v",
				diff.Missing, diff.Extra, diff.Changed)
		}
	})
}

func TestMirrorTree(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"config.yaml":    "threads: 4",
		"data/input.txt": "hello",
	})
	dst := t.TempDir()
	writeFiles(t, dst, map[string]string{
		"config.yaml":   "threads: 8",
		"stray/old.txt": "gone soon",
	})

	if err := fixtree.MirrorTree(ctx, src, dst); err != nil {
		t.Fatalf("MirrorTree failed: %v", err)
	}

	diff, err := fixtree.DiffTrees(ctx, dst, src, nil)
	if err != nil {
		t.Fatalf("DiffTrees failed: %v", err)
	}
	if !diff.InSync() {
		t.Errorf("destination not in sync after mirror: missing=%v extra=%v changed=%v",
			diff.Missing, diff.Extra, diff.Changed)
	}
	if _, err := os.Stat(filepath.Join(dst, "stray")); !os.IsNotExist(err) {
		t.Errorf("stray directory survived the mirror: stat err = %v", err)
	}
}
