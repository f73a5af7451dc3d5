package email_scrape

import (
	"encoding/base64"
	"html"
	"io"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"

	"jobscraper/internal/domain"
	"jobscraper/internal/scrape/util"
)

var (
	reHref = regexp.MustCompile(`(?is)<a[^>]+href=["']([^"'#]+)["'][^>]*>(.*?)</a>`)
	reTags = regexp.MustCompile(`(?is)<[^>]+>`)
)

// hosts whose links in an alert email actually point at a job posting
var jobLinkHosts = []string{
	"linkedin.com/jobs/view",
	"linkedin.com/comm/jobs/view",
	"naukri.com/job-listings",
}

// leadsFromMessage extracts job-posting links from one alert email. The
// anchor text is the best title guess we get without fetching the page.
func leadsFromMessage(m message) []domain.JobLead {
	body := decodeBody(m.Raw)
	if body == "" {
		return nil
	}

	seen := map[string]bool{}
	var out []domain.JobLead

	for _, match := range reHref.FindAllStringSubmatch(body, -1) {
		href := strings.TrimSpace(html.UnescapeString(match[1]))
		if href == "" || !looksLikeJobLink(href) {
			continue
		}

		cu := util.CanonicalizeURL(href)
		if seen[cu] {
			continue
		}
		seen[cu] = true

		title := strings.TrimSpace(reTags.ReplaceAllString(match[2], " "))
		title = util.CleanText(html.UnescapeString(title))
		if title == "" || looksLikeJunkAnchor(title) {
			title = "Job Posting"
		}

		date := m.Date
		out = append(out, domain.JobLead{
			Site:     "email",
			Title:    title,
			URL:      cu,
			PostedAt: &date,
		})
	}

	return out
}

func looksLikeJobLink(href string) bool {
	l := strings.ToLower(href)
	if !strings.HasPrefix(l, "http") {
		return false
	}
	for _, h := range jobLinkHosts {
		if strings.Contains(l, h) {
			return true
		}
	}
	return false
}

func looksLikeJunkAnchor(t string) bool {
	l := strings.ToLower(t)
	return l == "view" || l == "apply" || strings.HasPrefix(l, "see all") ||
		strings.HasPrefix(l, "unsubscribe")
}

// decodeBody pulls a text body out of the raw RFC822 bytes. Alert emails
// are single-part HTML or multipart with an HTML part; we don't need a
// full MIME walker for them.
func decodeBody(raw []byte) string {
	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		return string(raw)
	}

	b, err := io.ReadAll(msg.Body)
	if err != nil {
		return ""
	}
	body := string(b)

	switch strings.ToLower(strings.TrimSpace(msg.Header.Get("Content-Transfer-Encoding"))) {
	case "base64":
		if dec, err := base64.StdEncoding.DecodeString(strings.Map(dropSpace, body)); err == nil {
			body = string(dec)
		}
	case "quoted-printable":
		if dec, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(body))); err == nil {
			body = string(dec)
		}
	}

	// multipart: decode any quoted-printable soft breaks so hrefs split
	// across lines still match
	body = strings.ReplaceAll(body, "=\r\n", "")
	body = strings.ReplaceAll(body, "=\n", "")
	body = strings.ReplaceAll(body, "=3D", "=")

	return body
}

func dropSpace(r rune) rune {
	switch r {
	case ' ', '\t', '\r', '\n':
		return -1
	}
	return r
}
