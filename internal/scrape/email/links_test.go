package email_scrape

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func rawMessage(headers, body string) []byte {
	return []byte(headers + "\r\n\r\n" + body)
}

func TestLeadsFromMessageHTMLAlert(t *testing.T) {
	body := `<html><body>
	<a href="https://www.linkedin.com/comm/jobs/view/3782356912?refId=abc&amp;trk=email">Product Manager - Acme Corp</a>
	<a href="https://www.linkedin.com/comm/jobs/view/3782356912?refId=zzz">Product Manager - Acme Corp</a>
	<a href="https://www.naukri.com/job-listings-pm-acme-250800000001?utm_source=mail">Senior PM</a>
	<a href="https://www.linkedin.com/company/acme">Acme Corp</a>
	<a href="https://www.linkedin.com/jobs/view/999">Apply</a>
	<a href="https://example.com/unsubscribe">Unsubscribe</a>
	</body></html>`

	m := message{
		Subject: "new jobs for product manager",
		Date:    time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
		Raw:     rawMessage("Subject: job alert\r\nContent-Type: text/html", body),
	}

	leads := leadsFromMessage(m)
	if len(leads) != 3 {
		t.Fatalf("leads = %d, want 3 (dupe collapsed, non-job links dropped)", len(leads))
	}

	if leads[0].Title != "Product Manager - Acme Corp" {
		t.Errorf("title = %q", leads[0].Title)
	}
	if strings.Contains(leads[0].URL, "refId") {
		t.Errorf("tracking params survived: %q", leads[0].URL)
	}
	if leads[0].Site != "email" {
		t.Errorf("site = %q", leads[0].Site)
	}
	if leads[0].PostedAt == nil || !leads[0].PostedAt.Equal(m.Date) {
		t.Errorf("posted_at = %v, want message date", leads[0].PostedAt)
	}

	// junk anchor text falls back to a generic title
	if leads[2].Title != "Job Posting" {
		t.Errorf("junk anchor title = %q", leads[2].Title)
	}
}

func TestLeadsFromMessageQuotedPrintable(t *testing.T) {
	// href split by a soft line break, = escaped as =3D
	body := "<a href=3D\"https://www.naukri.com/job-lis=\r\ntings-pm-acme-1\">PM role</a>"
	m := message{
		Date: time.Now(),
		Raw: rawMessage(
			"Subject: alert\r\nContent-Transfer-Encoding: quoted-printable\r\nContent-Type: text/html",
			body),
	}

	leads := leadsFromMessage(m)
	if len(leads) != 1 {
		t.Fatalf("leads = %d, want 1", len(leads))
	}
	if !strings.Contains(leads[0].URL, "job-listings-pm-acme-1") {
		t.Errorf("soft break not joined: %q", leads[0].URL)
	}
}

func TestLeadsFromMessageBase64(t *testing.T) {
	html := `<a href="https://www.linkedin.com/jobs/view/42">Staff PM</a>`
	enc := base64.StdEncoding.EncodeToString([]byte(html))
	m := message{
		Date: time.Now(),
		Raw: rawMessage(
			"Subject: alert\r\nContent-Transfer-Encoding: base64\r\nContent-Type: text/html",
			enc),
	}

	leads := leadsFromMessage(m)
	if len(leads) != 1 {
		t.Fatalf("leads = %d, want 1", len(leads))
	}
	if leads[0].Title != "Staff PM" {
		t.Errorf("title = %q", leads[0].Title)
	}
}

func TestSubjectMatches(t *testing.T) {
	cases := []struct {
		subject string
		any     []string
		want    bool
	}{
		{"New jobs for Product Manager", []string{"product manager"}, true},
		{"30+ new jobs in Bengaluru", []string{"product manager", "new jobs"}, true},
		{"Your weekly digest", []string{"product manager"}, false},
		{"anything", nil, true},
	}
	for _, tc := range cases {
		if got := subjectMatches(tc.subject, tc.any); got != tc.want {
			t.Errorf("subjectMatches(%q, %v) = %v, want %v", tc.subject, tc.any, got, tc.want)
		}
	}
}
