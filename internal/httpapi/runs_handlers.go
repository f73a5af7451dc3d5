package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"jobscraper/internal/domain"
	"jobscraper/internal/store"
)

type RunsHandler struct {
	DB *sql.DB
}

type runView struct {
	ID           string `json:"id"`
	Trigger      string `json:"trigger"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at,omitempty"`
	Status       string `json:"status"`
	JobsFound    int    `json:"jobs_found"`
	JobsNew      int    `json:"jobs_new"`
	JobsUpserted int    `json:"jobs_upserted"`
	Error        string `json:"error,omitempty"`
}

func (h RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := store.ListRuns(r.Context(), h.DB, limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}

	out := make([]runView, 0, len(runs))
	for _, run := range runs {
		out = append(out, viewFromRun(run))
	}
	writeJSON(w, out)
}

func viewFromRun(run domain.Run) runView {
	v := runView{
		ID:           run.ID.String(),
		Trigger:      string(run.Trigger),
		StartedAt:    run.StartedAt.UTC().Format(time.RFC3339),
		Status:       string(run.Status),
		JobsFound:    run.JobsFound,
		JobsNew:      run.JobsNew,
		JobsUpserted: run.JobsUpserted,
		Error:        run.Error,
	}
	if run.FinishedAt != nil {
		v.FinishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
	}
	return v
}
