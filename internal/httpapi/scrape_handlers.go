package httpapi

import (
	"net/http"
	"time"

	"jobscraper/internal/domain"
)

type ScrapeHandler struct {
	Runner   Trigger
	NextFire func() time.Time
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.Runner.Status()

	out := map[string]any{
		"last_run_at":   st.LastRunAt,
		"last_ok_at":    st.LastOkAt,
		"last_error":    st.LastError,
		"last_upserted": st.LastUpserted,
		"running":       st.Running,
	}
	if h.NextFire != nil {
		if next := h.NextFire(); !next.IsZero() {
			out["next_fire_at"] = next.UTC().Format(time.RFC3339)
		}
	}
	writeJSON(w, out)
}

// Run starts one scrape run, independent of the standing schedule. The run
// happens in the background, detached from the request; the response only
// acknowledges that it was accepted. The runner's slot claim is synchronous,
// so exactly one of two racing requests gets "started".
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	if err := h.Runner.StartAsync(domain.TriggerManual); err != nil {
		WriteError(w, r, http.StatusConflict, "already_running", "a scrape run is already in flight")
		return
	}

	writeJSON(w, map[string]any{
		"status":    "started",
		"message":   "Job scraping started",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
