package runner

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"jobscraper/internal/config"
	"jobscraper/internal/domain"
	"jobscraper/internal/events"
	"jobscraper/internal/scrape"
	"jobscraper/internal/scrape/util"
	"jobscraper/internal/store"
	"jobscraper/internal/supabase"
)

// RunOnce executes one scrape run and blocks until it finishes. No retry,
// no rollback: a failed run ends at the diagnostic log line.
func (r *Runner) RunOnce(ctx context.Context, trigger domain.TriggerKind) (domain.Run, error) {
	if !r.running.CompareAndSwap(false, true) {
		return domain.Run{}, ErrAlreadyRunning
	}
	return r.run(ctx, trigger)
}

// StartAsync claims the run slot and executes the run in the background.
// The caller learns synchronously whether the run was accepted, so two
// near-simultaneous triggers cannot both be told they started one.
func (r *Runner) StartAsync(trigger domain.TriggerKind) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()
		_, _ = r.run(ctx, trigger)
	}()
	return nil
}

// run assumes the caller holds the run slot and releases it when done.
func (r *Runner) run(ctx context.Context, trigger domain.TriggerKind) (domain.Run, error) {
	defer r.running.Store(false)

	cfg := r.CfgVal.Load().(config.Config)
	now := time.Now().UTC()

	run := domain.Run{
		ID:        uuid.New(),
		Trigger:   trigger,
		StartedAt: now,
		Status:    domain.RunStatusRunning,
	}

	st := r.Status()
	st.Running = true
	st.LastRunAt = now.Format(time.RFC3339)
	r.status.Store(st)

	if err := store.InsertRun(ctx, r.DB, run); err != nil {
		log.Printf("[runner] record run: %v", err)
	}
	r.Hub.Publish(events.New("", events.TypeRunStarted, 1,
		map[string]any{"id": run.ID.String(), "trigger": string(trigger)}))
	r.Metrics.RunStarted(string(trigger))

	log.Printf("[runner] starting job scraping... run=%s trigger=%s", run.ID, trigger)

	err := r.scrapeAndUpsert(ctx, cfg, &run)

	finished := time.Now().UTC()
	run.FinishedAt = &finished

	if err != nil {
		run.Status = domain.RunStatusFailed
		run.Error = err.Error()
		r.onFailure(err)
	} else {
		run.Status = domain.RunStatusSucceeded
		log.Printf("[runner] job scraping completed: found=%d new=%d upserted=%d dur=%s",
			run.JobsFound, run.JobsNew, run.JobsUpserted, run.Duration().Round(time.Millisecond))
	}

	if ferr := store.FinishRun(ctx, r.DB, run); ferr != nil {
		log.Printf("[runner] record run result: %v", ferr)
	}

	st = r.Status()
	st.Running = false
	st.LastUpserted = run.JobsUpserted
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
		st.LastOkAt = finished.Format(time.RFC3339)
	}
	r.status.Store(st)

	r.Hub.Publish(events.New("", events.TypeRunFinished, 1, map[string]any{
		"id":       run.ID.String(),
		"status":   string(run.Status),
		"upserted": run.JobsUpserted,
	}))
	r.Metrics.RunCompleted(string(trigger), run.Duration(), run.JobsUpserted, err)

	return run, err
}

// onFailure is the whole failure path: one diagnostic line, nothing else.
func (r *Runner) onFailure(err error) {
	log.Printf("[runner] %s: %v", FailureDiagnostic, err)
}

func (r *Runner) scrapeAndUpsert(ctx context.Context, cfg config.Config, run *domain.Run) error {
	// Verify the sink up front so a bad credential fails the run before
	// we hammer the job sites.
	if err := r.Sink.Ping(ctx); err != nil {
		return err
	}

	var emailPw string
	if cfg.Sources.Email.Enabled && r.LookupEmailPassword != nil {
		pw, err := r.LookupEmailPassword(cfg.Sources.Email.Username, cfg.Sources.Email.IMAPHost)
		if err != nil {
			// email is a secondary source: log and scrape the rest
			log.Printf("[runner] email source disabled for this run: %v", err)
			cfg.Sources.Email.Enabled = false
		} else {
			emailPw = pw
		}
	}

	fetchers := r.BuildFetchers(cfg, emailPw)
	results := scrape.FetchAll(ctx, fetchers)

	now := time.Now().UTC()
	scrapedAt := now.Format(time.RFC3339)

	inRun := map[string]bool{}
	var rows []supabase.Row
	for _, res := range results {
		r.Metrics.SourceFetched(res.Source, len(res.Leads))
		run.JobsFound += len(res.Leads)

		for _, lead := range res.Leads {
			keep, why := scrape.ShouldKeepJob(cfg, lead, now)
			if !keep {
				log.Printf("[%s] skipped (%s) title=%q loc=%q url=%q",
					res.Source, why, lead.Title, lead.LocationRaw, lead.URL)
				continue
			}

			sourceID := util.SourceID(lead.Site, lead.SourceJobID, lead.URL)
			if inRun[sourceID] {
				continue
			}
			inRun[sourceID] = true

			seen, err := store.Seen(ctx, r.DB, sourceID)
			if err != nil {
				log.Printf("[%s] dedupe error source_id=%q: %v", res.Source, sourceID, err)
				continue
			}
			if seen {
				continue
			}

			run.JobsNew++
			rows = append(rows, rowFromLead(lead, sourceID, scrapedAt))
		}
	}

	if len(rows) == 0 {
		log.Printf("[runner] no new jobs to upsert")
		return nil
	}

	stored := r.Sink.UpsertAll(ctx, rows, cfg.Supabase.BatchSize)
	run.JobsUpserted = len(stored)

	// Only rows that reached the table enter the seen cache. Rows from a
	// failed batch stay unseen and get retried by the next run.
	for _, row := range stored {
		if _, err := store.MarkSeen(ctx, r.DB, row.ID); err != nil {
			log.Printf("[runner] seen cache source_id=%q: %v", row.ID, err)
		}
	}

	if len(stored) > 0 {
		r.Hub.Publish(events.New("", events.TypeJobUpserted, 1,
			map[string]any{"count": len(stored)}))
	}

	return ctx.Err()
}

func rowFromLead(lead domain.JobLead, sourceID, scrapedAt string) supabase.Row {
	var datePosted *string
	if lead.PostedAt != nil && !lead.PostedAt.IsZero() {
		s := lead.PostedAt.UTC().Format(time.RFC3339)
		datePosted = &s
	}

	company := lead.CompanyName
	if company == "" {
		company = "Unknown"
	}
	title := lead.Title
	if title == "" {
		title = "Job Posting"
	}
	location := lead.LocationRaw
	if location == "" {
		location = "Unknown"
	}
	workMode := lead.WorkMode
	if workMode == "" {
		workMode = "Unknown"
	}

	return supabase.Row{
		ID:          sourceID,
		Site:        lead.Site,
		Title:       title,
		Company:     company,
		Location:    location,
		WorkMode:    workMode,
		JobURL:      lead.URL,
		Description: lead.Description,
		DatePosted:  datePosted,
		ScrapedAt:   scrapedAt,
	}
}
