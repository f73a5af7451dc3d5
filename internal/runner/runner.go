package runner

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"

	"jobscraper/internal/config"
	"jobscraper/internal/events"
	"jobscraper/internal/metrics"
	"jobscraper/internal/scrape"
	"jobscraper/internal/scrape/types"
	"jobscraper/internal/supabase"
)

// FailureDiagnostic is the one fixed line operators grep for. Emitted
// exactly once per failed run, never on success.
const FailureDiagnostic = "Job scraping failed - check logs"

var ErrAlreadyRunning = errors.New("a scrape run is already in flight")

// Status is the last-run snapshot served by the HTTP API.
type Status struct {
	LastRunAt    string `json:"last_run_at"`
	LastOkAt     string `json:"last_ok_at"`
	LastError    string `json:"last_error"`
	LastUpserted int    `json:"last_upserted"`
	Running      bool   `json:"running"`
}

// Upserter is the slice of the Supabase client the runner needs. UpsertAll
// reports which rows reached the table so the seen cache only records those.
type Upserter interface {
	Ping(ctx context.Context) error
	UpsertAll(ctx context.Context, rows []supabase.Row, batchSize int) []supabase.Row
}

type Runner struct {
	DB      *sql.DB
	CfgVal  *atomic.Value // config.Config
	Sink    Upserter
	Hub     *events.Hub
	Metrics metrics.Sink

	// Overridable for tests.
	BuildFetchers       func(cfg config.Config, emailPassword string) []types.Fetcher
	LookupEmailPassword func(username, host string) (string, error)

	status  atomic.Value // Status
	running atomic.Bool
}

func New(db *sql.DB, cfgVal *atomic.Value, sink Upserter, hub *events.Hub, m metrics.Sink) *Runner {
	r := &Runner{
		DB:            db,
		CfgVal:        cfgVal,
		Sink:          sink,
		Hub:           hub,
		Metrics:       m,
		BuildFetchers: scrape.BuildFetchers,
	}
	if m == nil {
		r.Metrics = metrics.NewNoopSink()
	}
	r.status.Store(Status{})
	return r
}

func (r *Runner) Status() Status {
	return r.status.Load().(Status)
}

func (r *Runner) Running() bool {
	return r.running.Load()
}
