// Package treediff compares directory trees by content and reconciles one
// tree onto another. It builds on the fileutil primitives and reports
// differences in terms of relative paths, which keeps results comparable
// across machines.
package treediff

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/fixtree/internal/fileutil"
)

// Result describes how the got tree differs from the want tree. All slices
// hold relative paths in sorted order.
type Result struct {
	// Missing lists files present in want but absent from got.
	Missing []string
	// Extra lists files present in got but absent from want.
	Extra []string
	// Changed lists files present in both trees with differing content.
	Changed []string
}

// InSync reports whether the two trees have identical file sets and content.
func (r Result) InSync() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0 && len(r.Changed) == 0
}

// Diff compares the got tree against the want tree and classifies every
// relative path as missing, extra, or changed. When exts is non-empty only
// files with a matching extension participate. Content comparison is cheap
// first (file size) and hashes only same-size pairs, in a bounded group so
// large trees do not serialize on IO.
//
// Both roots must exist and be directories. Any failure aborts the diff and
// propagates to the caller.
func Diff(ctx context.Context, got, want string, exts []string) (Result, error) {
	if err := statDir(got); err != nil {
		return Result{}, err
	}
	if err := statDir(want); err != nil {
		return Result{}, err
	}

	gotFiles, err := fileutil.CollectFiles(got, exts)
	if err != nil {
		return Result{}, err
	}
	wantFiles, err := fileutil.CollectFiles(want, exts)
	if err != nil {
		return Result{}, err
	}

	gotSet := make(map[string]struct{}, len(gotFiles))
	for _, rel := range gotFiles {
		gotSet[rel] = struct{}{}
	}
	wantSet := make(map[string]struct{}, len(wantFiles))
	for _, rel := range wantFiles {
		wantSet[rel] = struct{}{}
	}

	var res Result

	// CollectFiles returns sorted paths, so iterating them keeps every
	// result slice sorted without a second pass.
	var shared []string
	for _, rel := range gotFiles {
		if _, ok := wantSet[rel]; ok {
			shared = append(shared, rel)
		} else {
			res.Extra = append(res.Extra, rel)
		}
	}
	for _, rel := range wantFiles {
		if _, ok := gotSet[rel]; !ok {
			res.Missing = append(res.Missing, rel)
		}
	}

	// Each goroutine writes its own index, so no lock is needed.
	changed := make([]bool, len(shared))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(10)

	for i, rel := range shared {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			differs, err := filesDiffer(filepath.Join(got, rel), filepath.Join(want, rel))
			if err != nil {
				return err
			}
			changed[i] = differs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	for i, rel := range shared {
		if changed[i] {
			res.Changed = append(res.Changed, rel)
		}
	}

	return res, nil
}

// filesDiffer reports whether two files have different content. A size
// mismatch decides without reading either file.
func filesDiffer(gotPath, wantPath string) (bool, error) {
	gotInfo, err := os.Stat(gotPath)
	if err != nil {
		return false, fmt.Errorf("inspect %s: %w", gotPath, err)
	}
	wantInfo, err := os.Stat(wantPath)
	if err != nil {
		return false, fmt.Errorf("inspect %s: %w", wantPath, err)
	}
	if gotInfo.Size() != wantInfo.Size() {
		return true, nil
	}

	gotHash, err := fileutil.HashFile(gotPath)
	if err != nil {
		return false, err
	}
	wantHash, err := fileutil.HashFile(wantPath)
	if err != nil {
		return false, err
	}
	return gotHash != wantHash, nil
}

// statDir fails unless path names an existing directory.
func statDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("inspect directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
