package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"jobscraper/internal/domain"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(db.Pool); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testDB(t)
	if err := Migrate(db.Pool); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestRunLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	run := domain.Run{
		ID:        uuid.New(),
		Trigger:   domain.TriggerSchedule,
		StartedAt: time.Now().UTC().Truncate(time.Second),
		Status:    domain.RunStatusRunning,
	}
	if err := InsertRun(ctx, db.Pool, run); err != nil {
		t.Fatal(err)
	}

	finished := run.StartedAt.Add(42 * time.Second)
	run.FinishedAt = &finished
	run.Status = domain.RunStatusSucceeded
	run.JobsFound = 70
	run.JobsNew = 12
	run.JobsUpserted = 12
	if err := FinishRun(ctx, db.Pool, run); err != nil {
		t.Fatal(err)
	}

	runs, err := ListRuns(ctx, db.Pool, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}

	got := runs[0]
	if got.ID != run.ID {
		t.Errorf("id = %s, want %s", got.ID, run.ID)
	}
	if got.Trigger != domain.TriggerSchedule || got.Status != domain.RunStatusSucceeded {
		t.Errorf("trigger/status = %s/%s", got.Trigger, got.Status)
	}
	if got.JobsFound != 70 || got.JobsNew != 12 || got.JobsUpserted != 12 {
		t.Errorf("counters = %d/%d/%d", got.JobsFound, got.JobsNew, got.JobsUpserted)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(finished) {
		t.Errorf("finished_at = %v, want %v", got.FinishedAt, finished)
	}
}

func TestListRunsOrderAndLimit(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := domain.Run{
			ID:        uuid.New(),
			Trigger:   domain.TriggerManual,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Status:    domain.RunStatusSucceeded,
		}
		if err := InsertRun(ctx, db.Pool, run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := ListRuns(ctx, db.Pool, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("runs = %d, want limit applied", len(runs))
	}
	// newest first
	if !runs[0].StartedAt.After(runs[1].StartedAt) || !runs[1].StartedAt.After(runs[2].StartedAt) {
		t.Errorf("runs not newest-first: %v %v %v",
			runs[0].StartedAt, runs[1].StartedAt, runs[2].StartedAt)
	}
}

func TestSeenAndMarkSeen(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// reading never inserts
	seen, err := Seen(ctx, db.Pool, "naukri:250800000001")
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Error("unseen id reported as seen")
	}
	seen, err = Seen(ctx, db.Pool, "naukri:250800000001")
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Error("lookup alone marked the id seen")
	}

	added, err := MarkSeen(ctx, db.Pool, "naukri:250800000001")
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Error("first sighting not reported as new")
	}

	added, err = MarkSeen(ctx, db.Pool, "naukri:250800000001")
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("repeat sighting reported as new")
	}

	seen, err = Seen(ctx, db.Pool, "naukri:250800000001")
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Error("marked id not reported as seen")
	}

	if _, err := MarkSeen(ctx, db.Pool, ""); err == nil {
		t.Error("empty source id accepted")
	}
}

func TestCleanupOldRows(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	old := domain.Run{
		ID:        uuid.New(),
		Trigger:   domain.TriggerSchedule,
		StartedAt: time.Now().UTC().AddDate(0, -4, 0),
		Status:    domain.RunStatusSucceeded,
	}
	recent := domain.Run{
		ID:        uuid.New(),
		Trigger:   domain.TriggerSchedule,
		StartedAt: time.Now().UTC(),
		Status:    domain.RunStatusSucceeded,
	}
	for _, r := range []domain.Run{old, recent} {
		if err := InsertRun(ctx, db.Pool, r); err != nil {
			t.Fatal(err)
		}
	}

	n, err := CleanupOldRuns(db.Pool)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}

	runs, err := ListRuns(ctx, db.Pool, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != recent.ID {
		t.Errorf("surviving runs = %v", runs)
	}

	// seen_jobs rows inserted now are all recent; nothing to prune
	if _, err := MarkSeen(ctx, db.Pool, "x:1"); err != nil {
		t.Fatal(err)
	}
	n, err = CleanupOldSeen(db.Pool)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("pruned %d fresh seen rows", n)
	}
}
