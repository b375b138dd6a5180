package core

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"

	"github.com/giantswarm/fixtree/internal/sentinel"
)

// errTagExists is returned by insertRun when the tag is already cataloged.
const errTagExists = sentinel.Error("run tag already exists")

// errRunNotFound is returned by markKept when no row matches the tag,
// typically because the run was pruned in the meantime.
const errRunNotFound = sentinel.Error("run not found in catalog")

// catalogSchema creates the runs table. created_at is a Unix timestamp;
// the index serves the age and recency scans of the pruning sweep.
const catalogSchema = `
CREATE TABLE IF NOT EXISTS runs (
	tag        TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	dir        TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	kept       INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at);
`

// catalog records every run of a workspace in a SQLite database so that
// runs survive process restarts and the pruning sweep can reason about age
// and recency across processes.
type catalog struct {
	db *sql.DB
}

// runRow is one catalog entry.
type runRow struct {
	Tag       string
	Name      string
	Dir       string
	CreatedAt time.Time
	Kept      bool
}

// openCatalog opens (creating if needed) the catalog database at path and
// ensures the schema exists.
func openCatalog(ctx context.Context, path string) (*catalog, error) {
	// WAL mode keeps readers from blocking the writer, the busy timeout
	// covers concurrent access from other processes sharing the base dir,
	// and NORMAL synchronous mode reduces fsync calls. NORMAL is safe here
	// because the catalog only mirrors directories that can be re-listed.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)&_pragma=synchronous(NORMAL)",
		path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// A single connection is enough for low-traffic bookkeeping.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, catalogSchema); err != nil {
		db.Close() //nolint:errcheck // the schema error takes precedence
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}

	return &catalog{db: db}, nil
}

// Close releases the database connection.
func (c *catalog) Close() error {
	return c.db.Close()
}

// insertRun adds a row for a new run. Returns errTagExists when the tag is
// already cataloged, detected via INSERT OR IGNORE so no driver-specific
// constraint error needs parsing.
func (c *catalog) insertRun(ctx context.Context, row runRow) error {
	res, err := c.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO runs (tag, name, dir, created_at, kept) VALUES (?, ?, ?, ?, 0)`,
		row.Tag, row.Name, row.Dir, row.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert run row: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check insert result: %w", err)
	}
	if affected == 0 {
		return errTagExists
	}
	return nil
}

// markKept flags a run as exempt from pruning. Returns errRunNotFound when
// the row no longer exists.
func (c *catalog) markKept(ctx context.Context, tag string) error {
	res, err := c.db.ExecContext(ctx, `UPDATE runs SET kept = 1 WHERE tag = ?`, tag)
	if err != nil {
		return fmt.Errorf("update run row: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check update result: %w", err)
	}
	if affected == 0 {
		return errRunNotFound
	}
	return nil
}

// deleteRun removes a single run row. Deleting an absent row is not an
// error.
func (c *catalog) deleteRun(ctx context.Context, tag string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM runs WHERE tag = ?`, tag); err != nil {
		return fmt.Errorf("delete run row: %w", err)
	}
	return nil
}

// deleteRuns removes the rows for the given tags in one transaction.
func (c *catalog) deleteRuns(ctx context.Context, tags []string) error {
	if len(tags) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := "DELETE FROM runs WHERE tag IN (?" + strings.Repeat(", ?", len(tags)-1) + ")"
	args := make([]any, len(tags))
	for i, tag := range tags {
		args[i] = tag
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete run rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog transaction: %w", err)
	}
	return nil
}

// pruneCandidates returns unkept runs that fall outside the retention
// policy: older than maxAge (when maxAge > 0) or beyond the newest maxRuns
// (when maxRuns > 0). Kept runs never appear. Both bounds disabled yields
// no candidates.
//
// The query is assembled from the enabled bounds so a disabled bound adds
// no clause at all, keeping the common single-bound case a plain indexed
// scan.
func (c *catalog) pruneCandidates(ctx context.Context, maxAge time.Duration, maxRuns int) ([]runRow, error) {
	var conds []string
	var args []any

	if maxAge > 0 {
		conds = append(conds, "created_at < ?")
		args = append(args, time.Now().Add(-maxAge).Unix())
	}
	if maxRuns > 0 {
		// LIMIT -1 OFFSET n skips the n newest unkept runs and returns the
		// rest. The tag tiebreak makes the ordering total for rows created
		// within the same second.
		conds = append(conds, "tag IN (SELECT tag FROM runs WHERE kept = 0 ORDER BY created_at DESC, tag DESC LIMIT -1 OFFSET ?)")
		args = append(args, maxRuns)
	}
	if len(conds) == 0 {
		return nil, nil
	}

	query := "SELECT tag, name, dir, created_at, kept FROM runs WHERE kept = 0 AND (" +
		strings.Join(conds, " OR ") + ") ORDER BY created_at, tag"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prune candidates: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows.Err() below catches read errors; Close error is redundant

	var candidates []runRow
	for rows.Next() {
		var row runRow
		var createdAt int64
		if err := rows.Scan(&row.Tag, &row.Name, &row.Dir, &createdAt, &row.Kept); err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		row.CreatedAt = time.Unix(createdAt, 0)
		candidates = append(candidates, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate rows: %w", err)
	}

	return candidates, nil
}
