package domain

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

type TriggerKind string

const (
	TriggerSchedule TriggerKind = "schedule"
	TriggerManual   TriggerKind = "manual"
)

// Run is the record of one scrape run: when it started, how it ended, and
// what it found along the way.
type Run struct {
	ID         uuid.UUID
	Trigger    TriggerKind
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     RunStatus

	JobsFound    int
	JobsNew      int
	JobsUpserted int

	Error string
}

func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
