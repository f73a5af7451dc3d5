package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NormalizeAndValidate returns a normalized copy plus everything wrong or
// questionable about it. Callers should persist the normalized copy.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Search.Term = strings.TrimSpace(out.Search.Term)
	out.Search.Locations = trimList(out.Search.Locations)
	out.Filters.LocationsAllow = trimList(out.Filters.LocationsAllow)
	out.Filters.LocationsBlock = trimList(out.Filters.LocationsBlock)
	out.Filters.KeywordsAny = trimList(out.Filters.KeywordsAny)
	out.Sources.Email.SearchSubjectAny = trimList(out.Sources.Email.SearchSubjectAny)

	// ---- Defaults ----

	if strings.TrimSpace(out.Scheduler.Cron) == "" {
		out.Scheduler.Cron = "0 6 * * *"
	}
	if strings.TrimSpace(out.Scheduler.Timezone) == "" {
		out.Scheduler.Timezone = "UTC"
	}
	if out.Supabase.Table == "" {
		out.Supabase.Table = "job_listings"
	}
	if out.Supabase.BatchSize <= 0 {
		out.Supabase.BatchSize = 10
	}
	if out.Supabase.TimeoutSeconds <= 0 {
		out.Supabase.TimeoutSeconds = 30
	}
	if out.Rate.PerHostRPS <= 0 {
		out.Rate.PerHostRPS = 1.0
	}
	if out.Rate.Burst <= 0 {
		out.Rate.Burst = 2
	}
	if out.Sources.Email.LookbackDays <= 0 {
		out.Sources.Email.LookbackDays = 3
	}

	// ---- Validation rules ----

	if _, err := cronParser.Parse(out.Scheduler.Cron); err != nil {
		res.addErr("scheduler.cron %q is not a valid 5-field cron expression: %v", out.Scheduler.Cron, err)
	}

	if out.Search.Term == "" {
		res.addErr("search.term must not be empty")
	}
	if len(out.Search.Locations) == 0 {
		res.addErr("search.locations must have at least 1 entry")
	}
	if out.Search.ResultsPerLocation <= 0 {
		res.addErr("search.results_per_location must be > 0")
	} else if out.Search.ResultsPerLocation > 100 {
		res.addWarn("search.results_per_location is high (%d); sites may rate-limit or block.", out.Search.ResultsPerLocation)
	}
	if out.Search.MaxAgeHours <= 0 {
		res.addErr("search.max_age_hours must be > 0")
	}

	if !out.Sources.Naukri.Enabled && !out.Sources.LinkedIn.Enabled && !out.Sources.Email.Enabled {
		res.addErr("no sources enabled: enable naukri, linkedin, or email")
	}

	// email required fields if enabled (password lives in the keychain)
	if out.Sources.Email.Enabled {
		if strings.TrimSpace(out.Sources.Email.IMAPHost) == "" {
			res.addErr("sources.email.imap_host is required when sources.email.enabled=true")
		}
		if out.Sources.Email.IMAPPort == 0 {
			res.addErr("sources.email.imap_port is required when sources.email.enabled=true")
		}
		if strings.TrimSpace(out.Sources.Email.Username) == "" {
			res.addErr("sources.email.username is required when sources.email.enabled=true")
		}
		if strings.TrimSpace(out.Sources.Email.Mailbox) == "" {
			res.addErr("sources.email.mailbox is required when sources.email.enabled=true")
		}
		if len(out.Sources.Email.SearchSubjectAny) == 0 {
			res.addWarn("sources.email.search_subject_any is empty; email scraping may find nothing.")
		}
	}

	if !out.Filters.RemoteOK && len(out.Filters.LocationsAllow) == 0 {
		res.addWarn("remote_ok is false and locations_allow is empty; you may filter out almost everything.")
	}

	// simple conflict check
	blockSet := map[string]bool{}
	for _, b := range out.Filters.LocationsBlock {
		blockSet[strings.ToLower(b)] = true
	}
	for _, a := range out.Filters.LocationsAllow {
		if blockSet[strings.ToLower(a)] {
			res.addWarn("location appears in both allow and block: %q", a)
		}
	}

	return out, res
}
