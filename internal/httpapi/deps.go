package httpapi

import (
	"database/sql"
	"sync/atomic"
	"time"

	"jobscraper/internal/config"
	"jobscraper/internal/domain"
	"jobscraper/internal/events"
	"jobscraper/internal/runner"
)

// Trigger is the slice of the runner the handlers need.
type Trigger interface {
	StartAsync(trigger domain.TriggerKind) error
	Status() runner.Status
}

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	Runner Trigger

	// Next scheduled fire time, for /scrape/status.
	NextFire func() time.Time

	// Atomic store for the reloadable config.
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
