package types

import (
	"context"

	"jobscraper/internal/domain"
)

type ScrapeResult struct {
	Source string
	Leads  []domain.JobLead
}

type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (ScrapeResult, error)
}

// Query is the per-run search the fetchers share.
type Query struct {
	Term               string
	Locations          []string
	ResultsPerLocation int
	MaxAgeHours        int
}
