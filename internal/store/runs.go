package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobscraper/internal/domain"
)

func InsertRun(ctx context.Context, db *sql.DB, r domain.Run) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO runs(id, "trigger", started_at, status)
VALUES(?,?,?,?);`,
		r.ID.String(),
		string(r.Trigger),
		r.StartedAt.UTC().Format(time.RFC3339),
		string(r.Status),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func FinishRun(ctx context.Context, db *sql.DB, r domain.Run) error {
	finished := ""
	if r.FinishedAt != nil {
		finished = r.FinishedAt.UTC().Format(time.RFC3339)
	}
	_, err := db.ExecContext(ctx, `
UPDATE runs
SET finished_at = ?, status = ?, jobs_found = ?, jobs_new = ?, jobs_upserted = ?, error = ?
WHERE id = ?;`,
		finished,
		string(r.Status),
		r.JobsFound,
		r.JobsNew,
		r.JobsUpserted,
		r.Error,
		r.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]domain.Run, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := db.QueryContext(ctx, `
SELECT id, "trigger", started_at, finished_at, status, jobs_found, jobs_new, jobs_upserted, error
FROM runs
ORDER BY started_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Run
	for rows.Next() {
		var r domain.Run
		var id, started string
		var finished sql.NullString
		var trigger, status string
		if err := rows.Scan(&id, &trigger, &started, &finished, &status,
			&r.JobsFound, &r.JobsNew, &r.JobsUpserted, &r.Error); err != nil {
			return nil, err
		}
		r.ID, _ = uuid.Parse(id)
		r.Trigger = domain.TriggerKind(trigger)
		r.Status = domain.RunStatus(status)
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		if finished.Valid && finished.String != "" {
			if t, err := time.Parse(time.RFC3339, finished.String); err == nil {
				r.FinishedAt = &t
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CleanupOldRuns drops run records older than three months.
func CleanupOldRuns(db *sql.DB) (deleted int64, err error) {
	res, err := db.Exec(`
DELETE FROM runs
WHERE started_at < datetime('now', '-3 months');
`)
	if err != nil {
		return 0, fmt.Errorf("cleanup old runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
