package scrape

import (
	"testing"
	"time"

	"jobscraper/internal/config"
	"jobscraper/internal/domain"
)

func filterCfg() config.Config {
	var cfg config.Config
	cfg.Search.MaxAgeHours = 720
	cfg.Filters.RemoteOK = true
	return cfg
}

func lead(mutate func(*domain.JobLead)) domain.JobLead {
	j := domain.JobLead{
		Site:        "naukri",
		Title:       "Product Manager",
		CompanyName: "Acme",
		LocationRaw: "Bengaluru, Karnataka",
		URL:         "https://www.naukri.com/job-listings-x",
	}
	if mutate != nil {
		mutate(&j)
	}
	return j
}

func TestShouldKeepJob(t *testing.T) {
	now := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	old := now.Add(-721 * time.Hour)
	fresh := now.Add(-24 * time.Hour)

	cases := []struct {
		name       string
		cfg        func(*config.Config)
		lead       func(*domain.JobLead)
		wantKeep   bool
		wantReason string
	}{
		{
			name:       "baseline keeps",
			wantKeep:   true,
			wantReason: "",
		},
		{
			name:       "missing url",
			lead:       func(j *domain.JobLead) { j.URL = "  " },
			wantKeep:   false,
			wantReason: "missing_url",
		},
		{
			name:       "too old",
			lead:       func(j *domain.JobLead) { j.PostedAt = &old },
			wantKeep:   false,
			wantReason: "too_old",
		},
		{
			name:     "fresh posting",
			lead:     func(j *domain.JobLead) { j.PostedAt = &fresh },
			wantKeep: true,
		},
		{
			name:       "blocklist wins over allowlist",
			cfg:        func(c *config.Config) { c.Filters.LocationsAllow = []string{"bengaluru"}; c.Filters.LocationsBlock = []string{"bengaluru"} },
			wantKeep:   false,
			wantReason: "location",
		},
		{
			name:       "not in allowlist",
			cfg:        func(c *config.Config) { c.Filters.LocationsAllow = []string{"Mumbai"} },
			wantKeep:   false,
			wantReason: "location",
		},
		{
			name:     "in allowlist",
			cfg:      func(c *config.Config) { c.Filters.LocationsAllow = []string{"Bengaluru"} },
			wantKeep: true,
		},
		{
			name: "remote rejected when remote_ok false",
			cfg:  func(c *config.Config) { c.Filters.RemoteOK = false },
			lead: func(j *domain.JobLead) {
				j.LocationRaw = "Remote, India"
			},
			wantKeep:   false,
			wantReason: "location",
		},
		{
			name: "remote with allowlist passes when remote_ok",
			cfg: func(c *config.Config) {
				c.Filters.LocationsAllow = []string{"Mumbai"}
			},
			lead:     func(j *domain.JobLead) { j.LocationRaw = "Remote" },
			wantKeep: true,
		},
		{
			name:       "keyword miss",
			cfg:        func(c *config.Config) { c.Filters.KeywordsAny = []string{"fintech", "saas"} },
			wantKeep:   false,
			wantReason: "no_keyword_match",
		},
		{
			name: "keyword hit in description",
			cfg:  func(c *config.Config) { c.Filters.KeywordsAny = []string{"SaaS"} },
			lead: func(j *domain.JobLead) {
				j.Description = "Own the roadmap for our SaaS platform"
			},
			wantKeep: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := filterCfg()
			if tc.cfg != nil {
				tc.cfg(&cfg)
			}
			keep, reason := ShouldKeepJob(cfg, lead(tc.lead), now)
			if keep != tc.wantKeep {
				t.Fatalf("keep = %v, want %v (reason=%q)", keep, tc.wantKeep, reason)
			}
			if tc.wantReason != "" && reason != tc.wantReason {
				t.Errorf("reason = %q, want %q", reason, tc.wantReason)
			}
		})
	}
}
