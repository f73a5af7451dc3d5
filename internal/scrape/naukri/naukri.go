package naukri

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"jobscraper/internal/domain"
	"jobscraper/internal/scrape/types"
	"jobscraper/internal/scrape/util"
)

const defaultBaseURL = "https://www.naukri.com"

type Config struct {
	Query   types.Query
	BaseURL string // overridable for tests
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "naukri" }

// Search API response, cut down to the fields we read.
type searchResponse struct {
	NoOfJobs   int          `json:"noOfJobs"`
	JobDetails []jobDetails `json:"jobDetails"`
}

type jobDetails struct {
	Title          string        `json:"title"`
	JobID          string        `json:"jobId"`
	CompanyName    string        `json:"companyName"`
	JDURL          string        `json:"jdURL"` // relative, e.g. /job-listings-...
	JobDescription string        `json:"jobDescription"`
	CreatedDate    int64         `json:"createdDate"` // ms epoch
	Placeholders   []placeholder `json:"placeholders"`
}

type placeholder struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	const workers = 4

	locations := s.cfg.Query.Locations
	jobsCh := make(chan []domain.JobLead, len(locations))
	workCh := make(chan string)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for loc := range workCh {
				cctx, cancel := context.WithTimeout(ctx, 30*time.Second)
				jobs, err := s.fetchLocation(cctx, loc)
				cancel()

				if err != nil {
					log.Printf("[naukri] location=%q err=%v", loc, err)
					continue
				}
				if len(jobs) > 0 {
					jobsCh <- jobs
				}
			}
		}()
	}

	go func() {
		defer close(workCh)
		for _, loc := range locations {
			select {
			case <-ctx.Done():
				return
			case workCh <- loc:
			}
		}
	}()

	wg.Wait()
	close(jobsCh)

	var out []domain.JobLead
	for batch := range jobsCh {
		out = append(out, batch...)
	}

	log.Printf("[naukri] fetched=%d", len(out))
	return types.ScrapeResult{Source: "naukri", Leads: out}, nil
}

func (s *Scraper) fetchLocation(ctx context.Context, location string) ([]domain.JobLead, error) {
	q := url.Values{}
	q.Set("noOfResults", fmt.Sprint(s.cfg.Query.ResultsPerLocation))
	q.Set("urlType", "search_by_key_loc")
	q.Set("searchType", "adv")
	q.Set("keyword", s.cfg.Query.Term)
	q.Set("location", stripCountry(location))
	q.Set("pageNo", "1")

	apiURL := s.cfg.BaseURL + "/jobapi/v3/search?" + q.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")
	// the search API rejects requests without these two
	req.Header.Set("appid", "109")
	req.Header.Set("systemid", "Naukri")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, apiURL); err != nil {
			return nil, err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("naukri get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("naukri status %d", res.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("naukri decode: %w", err)
	}

	cutoff := time.Now().Add(-time.Duration(s.cfg.Query.MaxAgeHours) * time.Hour)

	out := make([]domain.JobLead, 0, len(sr.JobDetails))
	for _, jd := range sr.JobDetails {
		if jd.JobID == "" || strings.TrimSpace(jd.Title) == "" {
			continue
		}

		var postedAt *time.Time
		if jd.CreatedDate > 0 {
			t := time.UnixMilli(jd.CreatedDate)
			if t.Before(cutoff) {
				continue
			}
			postedAt = &t
		}

		jobURL := jd.JDURL
		if strings.HasPrefix(jobURL, "/") {
			jobURL = s.cfg.BaseURL + jobURL
		}

		loc := util.NormalizeLocation(placeholderLabel(jd.Placeholders, "location"))
		if loc == "" {
			loc = util.NormalizeLocation(location)
		}

		out = append(out, domain.JobLead{
			Site:        "naukri",
			Title:       strings.TrimSpace(jd.Title),
			CompanyName: strings.TrimSpace(jd.CompanyName),
			LocationRaw: loc,
			WorkMode:    util.InferWorkModeFromText(loc, jd.Title, jd.JobDescription),
			URL:         jobURL,
			Description: jd.JobDescription,
			PostedAt:    postedAt,
			SourceJobID: jd.JobID,
		})
	}

	return out, nil
}

func placeholderLabel(ps []placeholder, typ string) string {
	for _, p := range ps {
		if strings.EqualFold(p.Type, typ) {
			return p.Label
		}
	}
	return ""
}

// "Bengaluru, IN" -> "Bengaluru"; the API wants bare city names.
func stripCountry(loc string) string {
	if i := strings.IndexByte(loc, ','); i >= 0 {
		return strings.TrimSpace(loc[:i])
	}
	return strings.TrimSpace(loc)
}
