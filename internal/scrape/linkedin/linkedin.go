package linkedin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobscraper/internal/domain"
	"jobscraper/internal/scrape/types"
	"jobscraper/internal/scrape/util"
)

// The guest search endpoint serves HTML job-card fragments without auth.
const defaultBaseURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"

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

func (s *Scraper) Name() string { return "linkedin" }

func (s *Scraper) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	var out []domain.JobLead
	seen := map[string]bool{}

	for _, loc := range s.cfg.Query.Locations {
		jobs, err := s.fetchLocation(ctx, loc)
		if err != nil {
			// don’t fail the whole run because one location search is down
			log.Printf("[linkedin] location=%q err=%v", loc, err)
			continue
		}
		for _, j := range jobs {
			key := util.SourceID(j.Site, j.SourceJobID, j.URL)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, j)
		}
	}

	log.Printf("[linkedin] fetched=%d", len(out))
	return types.ScrapeResult{Source: "linkedin", Leads: out}, nil
}

func (s *Scraper) fetchLocation(ctx context.Context, location string) ([]domain.JobLead, error) {
	q := url.Values{}
	q.Set("keywords", s.cfg.Query.Term)
	q.Set("location", location)
	q.Set("start", "0")
	if s.cfg.Query.MaxAgeHours > 0 {
		// f_TPR filters by posting age in seconds
		q.Set("f_TPR", fmt.Sprintf("r%d", s.cfg.Query.MaxAgeHours*3600))
	}

	searchURL := s.cfg.BaseURL + "?" + q.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, searchURL); err != nil {
			return nil, err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedin get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("linkedin status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("linkedin parse html: %w", err)
	}

	max := s.cfg.Query.ResultsPerLocation

	var jobs []domain.JobLead
	doc.Find("div.base-card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if max > 0 && len(jobs) >= max {
			return false
		}

		href, ok := card.Find("a.base-card__full-link").Attr("href")
		if !ok {
			href, ok = card.Find("a[href]").Attr("href")
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return true
		}

		title := util.CleanText(card.Find("h3.base-search-card__title").Text())
		if title == "" {
			return true
		}

		company := util.CleanText(card.Find("h4.base-search-card__subtitle").Text())
		loc := util.NormalizeLocation(card.Find("span.job-search-card__location").Text())
		if loc == "" {
			loc = util.NormalizeLocation(location)
		}

		var postedAt *time.Time
		if dt, ok := card.Find("time[datetime]").Attr("datetime"); ok {
			if t, err := time.Parse("2006-01-02", strings.TrimSpace(dt)); err == nil {
				postedAt = &t
			}
		}

		jobs = append(jobs, domain.JobLead{
			Site:        "linkedin",
			Title:       title,
			CompanyName: company,
			LocationRaw: loc,
			WorkMode:    util.InferWorkModeFromText(loc, title, ""),
			URL:         util.CanonicalizeURL(href),
			PostedAt:    postedAt,
			SourceJobID: entityID(card),
		})
		return true
	})

	return jobs, nil
}

// entityID pulls the numeric posting id out of data-entity-urn, e.g.
// "urn:li:jobPosting:3782356912".
func entityID(card *goquery.Selection) string {
	urn, ok := card.Attr("data-entity-urn")
	if !ok {
		return ""
	}
	if i := strings.LastIndexByte(urn, ':'); i >= 0 {
		return strings.TrimSpace(urn[i+1:])
	}
	return ""
}
