package scrape

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"jobscraper/internal/config"
	email_scrape "jobscraper/internal/scrape/email"
	"jobscraper/internal/scrape/linkedin"
	"jobscraper/internal/scrape/naukri"
	"jobscraper/internal/scrape/types"
	"jobscraper/internal/scrape/util"
)

// BuildFetchers assembles the enabled sources for one run.
func BuildFetchers(cfg config.Config, emailPassword string) []types.Fetcher {
	query := types.Query{
		Term:               cfg.Search.Term,
		Locations:          cfg.Search.Locations,
		ResultsPerLocation: cfg.Search.ResultsPerLocation,
		MaxAgeHours:        cfg.Search.MaxAgeHours,
	}

	limiter := util.NewHostLimiter(cfg.Rate.PerHostRPS, cfg.Rate.Burst)

	var fetchers []types.Fetcher
	if cfg.Sources.Naukri.Enabled {
		fetchers = append(fetchers, naukri.New(naukri.Config{Query: query}, limiter))
	}
	if cfg.Sources.LinkedIn.Enabled {
		fetchers = append(fetchers, linkedin.New(linkedin.Config{Query: query}, limiter))
	}
	if cfg.Sources.Email.Enabled {
		fetchers = append(fetchers, &email_scrape.Fetcher{Cfg: cfg.Sources.Email, Password: emailPassword})
	}
	return fetchers
}

// FetchAll runs the fetchers concurrently with per-source timeouts.
// Best-effort: a failed source is logged and doesn't cancel its siblings.
func FetchAll(ctx context.Context, fetchers []types.Fetcher) []types.ScrapeResult {
	var g errgroup.Group

	results := make(chan types.ScrapeResult, len(fetchers))

	for _, f := range fetchers {
		f := f

		g.Go(func() error {
			timeout := 2 * time.Minute
			switch f.Name() {
			case "naukri", "linkedin":
				timeout = 5 * time.Minute
			}

			fctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			log.Printf("[%s] running...", f.Name())
			res, err := f.Fetch(fctx)
			if err != nil {
				log.Printf("[%s] error: %v", f.Name(), err)
				return nil
			}
			results <- res
			return nil
		})
	}

	_ = g.Wait()
	close(results)

	out := make([]types.ScrapeResult, 0, len(fetchers))
	for res := range results {
		out = append(out, res)
	}
	return out
}
