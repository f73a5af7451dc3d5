package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Client talks to the Supabase PostgREST endpoint (/rest/v1). Auth is the
// anon key, sent both as apikey and bearer token, same as the official SDKs.
type Client struct {
	baseURL string
	key     string
	table   string
	hc      *http.Client
}

type Config struct {
	BaseURL        string // project URL, e.g. https://xyz.supabase.co
	Key            string
	Table          string
	TimeoutSeconds int
}

// Row mirrors the job_listings schema the previous deployment wrote.
type Row struct {
	ID          string  `json:"id"`
	Site        string  `json:"site"`
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	Location    string  `json:"location"`
	WorkMode    string  `json:"work_mode"`
	JobURL      string  `json:"job_url"`
	Description string  `json:"description,omitempty"`
	DatePosted  *string `json:"date_posted,omitempty"`
	ScrapedAt   string  `json:"scraped_at"`
}

func New(cfg Config) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		key:     cfg.Key,
		table:   cfg.Table,
		hc:      &http.Client{Timeout: timeout},
	}
}

// Ping verifies the endpoint and key work before a run starts.
func (c *Client) Ping(ctx context.Context) error {
	u := fmt.Sprintf("%s/rest/v1/%s?select=id&limit=1", c.baseURL, c.table)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.auth(req)

	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("supabase ping: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("supabase ping status %d: %s", res.StatusCode, readSnippet(res.Body))
	}
	return nil
}

// UpsertBatch upserts one batch of rows, merging on the id column.
func (c *Client) UpsertBatch(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	body, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("supabase marshal: %w", err)
	}

	u := fmt.Sprintf("%s/rest/v1/%s?on_conflict=id", c.baseURL, c.table)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.auth(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")

	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("supabase upsert: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("supabase upsert status %d: %s", res.StatusCode, readSnippet(res.Body))
	}
	return nil
}

// UpsertAll writes rows in batches and returns the rows that reached the
// table. A failed batch is logged and skipped; the rest of the run
// continues, and the caller can retry the missing rows on a later run.
func (c *Client) UpsertAll(ctx context.Context, rows []Row, batchSize int) (stored []Row) {
	if batchSize <= 0 {
		batchSize = 10
	}

	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[i:end]

		if err := c.UpsertBatch(ctx, batch); err != nil {
			log.Printf("[supabase] batch %d-%d failed: %v", i, end, err)
			continue
		}
		stored = append(stored, batch...)
	}
	return stored
}

func (c *Client) auth(req *http.Request) {
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
