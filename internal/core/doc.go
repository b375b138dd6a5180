// Package core provides the internal implementation of the fixtree workspace.
// It contains the Workspace (state machine with idempotent initialization and
// a SQLite-backed run catalog), Run (tagged run directory with one-shot
// discard), and the pruning sweep (cross-process file lock with parallel
// directory removal).
package core
