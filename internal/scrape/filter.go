package scrape

import (
	"strings"
	"time"

	"jobscraper/internal/config"
	"jobscraper/internal/domain"
)

func ShouldKeepJob(cfg config.Config, j domain.JobLead, now time.Time) (keep bool, reason string) {
	if strings.TrimSpace(j.URL) == "" {
		return false, "missing_url"
	}

	// 1) Posting age (the search APIs filter too, but email leads don't)
	if cfg.Search.MaxAgeHours > 0 && j.PostedAt != nil && !j.PostedAt.IsZero() {
		cutoff := now.Add(-time.Duration(cfg.Search.MaxAgeHours) * time.Hour)
		if j.PostedAt.Before(cutoff) {
			return false, "too_old"
		}
	}

	// 2) Location filter (biggest filter)
	if !passesLocation(cfg, j) {
		return false, "location"
	}

	// 3) Keyword allowlist, if configured
	if !matchesAnyKeyword(cfg, j) {
		return false, "no_keyword_match"
	}

	return true, ""
}

func passesLocation(cfg config.Config, j domain.JobLead) bool {
	text := strings.ToLower(strings.TrimSpace(j.LocationRaw))
	title := strings.ToLower(strings.TrimSpace(j.Title))
	desc := strings.ToLower(strings.TrimSpace(j.Description))

	// treat any mention of "remote" as remote-ish
	isRemote := strings.Contains(text, "remote") || strings.Contains(title, "remote") || strings.Contains(desc, "remote")

	// Blocklist wins
	for _, b := range cfg.Filters.LocationsBlock {
		b = strings.ToLower(strings.TrimSpace(b))
		if b == "" {
			continue
		}
		if strings.Contains(text, b) || strings.Contains(title, b) || strings.Contains(desc, b) {
			return false
		}
	}

	if isRemote {
		return cfg.Filters.RemoteOK
	}

	// Allowlist: if empty, allow everything (besides blocklist)
	allow := cfg.Filters.LocationsAllow
	if len(allow) == 0 {
		return true
	}

	for _, a := range allow {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if strings.Contains(text, a) || strings.Contains(title, a) || strings.Contains(desc, a) {
			return true
		}
	}
	return false
}

func matchesAnyKeyword(cfg config.Config, j domain.JobLead) bool {
	if len(cfg.Filters.KeywordsAny) == 0 {
		return true
	}

	text := strings.ToLower(j.Title + " " + j.Description)
	for _, needle := range cfg.Filters.KeywordsAny {
		n := strings.ToLower(strings.TrimSpace(needle))
		if n == "" {
			continue
		}
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
