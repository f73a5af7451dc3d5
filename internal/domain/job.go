package domain

import "time"

type JobLead struct {
	Site        string // naukri/linkedin/email
	Title       string
	CompanyName string
	LocationRaw string
	WorkMode    string // Remote/Hybrid/Onsite/Unknown
	URL         string
	Description string
	PostedAt    *time.Time
	SourceJobID string // site-native id when the site exposes one
}
