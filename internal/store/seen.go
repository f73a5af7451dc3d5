package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Seen reports whether a source id is already in the cache.
func Seen(ctx context.Context, db *sql.DB, sourceID string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `
SELECT 1 FROM seen_jobs WHERE source_id = ?;`, sourceID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seen lookup: %w", err)
	}
	return true, nil
}

// MarkSeen records a source id and reports whether it was new. Dedupe
// rides on the primary key via INSERT OR IGNORE.
func MarkSeen(ctx context.Context, db *sql.DB, sourceID string) (added bool, err error) {
	if sourceID == "" {
		return false, fmt.Errorf("empty source id")
	}

	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO seen_jobs(source_id, first_seen)
VALUES(?, ?);`,
		sourceID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("mark seen: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func CleanupOldSeen(db *sql.DB) (deleted int64, err error) {
	res, err := db.Exec(`
DELETE FROM seen_jobs
WHERE first_seen < datetime('now', '-3 months');
`)
	if err != nil {
		return 0, fmt.Errorf("cleanup seen jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
