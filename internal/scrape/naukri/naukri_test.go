package naukri

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobscraper/internal/scrape/types"
)

func TestFetchParsesSearchResponse(t *testing.T) {
	fresh := time.Now().Add(-2 * time.Hour).UnixMilli()
	stale := time.Now().Add(-1000 * time.Hour).UnixMilli()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobapi/v3/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("appid"); got != "109" {
			t.Errorf("appid header = %q", got)
		}
		if got := r.Header.Get("systemid"); got != "Naukri" {
			t.Errorf("systemid header = %q", got)
		}
		q := r.URL.Query()
		if q.Get("keyword") != "product manager" {
			t.Errorf("keyword = %q", q.Get("keyword"))
		}
		if q.Get("location") != "Bengaluru" {
			t.Errorf("location = %q, want country suffix stripped", q.Get("location"))
		}
		if q.Get("noOfResults") != "10" {
			t.Errorf("noOfResults = %q", q.Get("noOfResults"))
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"noOfJobs": 3,
			"jobDetails": [
				{
					"title": "Product Manager",
					"jobId": "250800000001",
					"companyName": "Acme Corp",
					"jdURL": "/job-listings-product-manager-acme-250800000001",
					"jobDescription": "Own the roadmap",
					"createdDate": %d,
					"placeholders": [{"type": "location", "label": "Bengaluru/Bangalore"}]
				},
				{
					"title": "Old Posting",
					"jobId": "250800000002",
					"jdURL": "/job-listings-old",
					"createdDate": %d
				},
				{
					"title": "",
					"jobId": "250800000003",
					"jdURL": "/job-listings-untitled"
				}
			]
		}`, fresh, stale)
	}))
	defer srv.Close()

	s := New(Config{
		BaseURL: srv.URL,
		Query: types.Query{
			Term:               "product manager",
			Locations:          []string{"Bengaluru, IN"},
			ResultsPerLocation: 10,
			MaxAgeHours:        720,
		},
	}, nil)

	res, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != "naukri" {
		t.Errorf("source = %q", res.Source)
	}
	if len(res.Leads) != 1 {
		t.Fatalf("leads = %d, want 1 (stale and untitled rows skipped)", len(res.Leads))
	}

	j := res.Leads[0]
	if j.Title != "Product Manager" || j.CompanyName != "Acme Corp" {
		t.Errorf("lead = %+v", j)
	}
	if j.SourceJobID != "250800000001" {
		t.Errorf("source job id = %q", j.SourceJobID)
	}
	if want := srv.URL + "/job-listings-product-manager-acme-250800000001"; j.URL != want {
		t.Errorf("url = %q, want relative jdURL resolved to %q", j.URL, want)
	}
	if j.LocationRaw != "Bengaluru/Bangalore" {
		t.Errorf("location = %q", j.LocationRaw)
	}
	if j.PostedAt == nil {
		t.Error("posted_at missing")
	}
}

func TestFetchSurvivesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	s := New(Config{
		BaseURL: srv.URL,
		Query: types.Query{
			Term:               "product manager",
			Locations:          []string{"Pune, IN", "Mumbai, IN"},
			ResultsPerLocation: 10,
			MaxAgeHours:        720,
		},
	}, nil)

	res, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("per-location failures must not fail the fetch: %v", err)
	}
	if len(res.Leads) != 0 {
		t.Errorf("leads = %d, want 0", len(res.Leads))
	}
}

func TestStripCountry(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Bengaluru, IN", "Bengaluru"},
		{"New Delhi, IN", "New Delhi"},
		{"Chennai", "Chennai"},
		{" Pune , IN", "Pune"},
	}
	for _, tc := range cases {
		if got := stripCountry(tc.in); got != tc.want {
			t.Errorf("stripCountry(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
