package email_scrape

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"jobscraper/internal/config"
	"jobscraper/internal/domain"
	"jobscraper/internal/scrape/types"
)

// Fetcher scrapes job-alert emails over IMAP. It is optional and off by
// default; the site scrapers are the primary sources.
type Fetcher struct {
	Cfg      config.EmailSource
	Password string
}

func (f *Fetcher) Name() string { return "email" }

func (f *Fetcher) Fetch(ctx context.Context) (types.ScrapeResult, error) {
	res := types.ScrapeResult{Source: "email"}

	addr := fmt.Sprintf("%s:%d", f.Cfg.IMAPHost, f.Cfg.IMAPPort)
	c, err := dialAndLogin(ctx, addr, f.Cfg.Username, f.Password)
	if err != nil {
		return res, err
	}
	defer logoutAndClose(c)

	mailbox := f.Cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return res, fmt.Errorf("imap select %s: %w", mailbox, err)
	}

	msgs, err := f.fetchUnseen(ctx, c)
	if err != nil {
		return res, err
	}

	var leads []domain.JobLead
	var seenUIDs []imap.UID
	for _, m := range msgs {
		if !subjectMatches(m.Subject, f.Cfg.SearchSubjectAny) {
			continue
		}
		ls := leadsFromMessage(m)
		leads = append(leads, ls...)
		seenUIDs = append(seenUIDs, m.UID)
	}

	if err := markSeen(c, seenUIDs); err != nil {
		// leads are already extracted; a re-scrape just re-dedupes
		log.Printf("[email] mark seen: %v", err)
	}

	log.Printf("[email] messages=%d leads=%d", len(msgs), len(leads))
	res.Leads = leads
	return res, nil
}

type message struct {
	UID     imap.UID
	Subject string
	Date    time.Time
	Raw     []byte
}

func dialAndLogin(ctx context.Context, addr, username, password string) (*imapclient.Client, error) {
	if username == "" || password == "" {
		return nil, errors.New("imap username/password is required")
	}

	c, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	// Best-effort close on context cancel.
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(username, password).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return c, nil
}

// fetchUnseen pulls unseen messages newer than the lookback window, with
// Envelope + full raw bytes. Uses BODY.PEEK[] so it will NOT set \Seen.
func (f *Fetcher) fetchUnseen(ctx context.Context, c *imapclient.Client) ([]message, error) {
	lookback := f.Cfg.LookbackDays
	if lookback <= 0 {
		lookback = 3
	}

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   time.Now().AddDate(0, 0, -lookback),
	}

	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search unseen: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	uidSet := imap.UIDSetNum(uids...)

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchOptions := &imap.FetchOptions{
		UID:          true,
		Envelope:     true,
		InternalDate: true,
		BodySection:  []*imap.FetchItemBodySection{bodyAll},
	}

	fetchCmd := c.Fetch(uidSet, fetchOptions)
	defer func() { _ = fetchCmd.Close() }()

	var out []message
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}

		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		var m message
		m.UID = buf.UID
		if buf.Envelope != nil {
			m.Subject = buf.Envelope.Subject
			m.Date = buf.Envelope.Date
		}
		if b := buf.FindBodySection(bodyAll); b != nil {
			m.Raw = append([]byte(nil), b...)
		}
		out = append(out, m)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

func markSeen(c *imapclient.Client, uids []imap.UID) error {
	if len(uids) == 0 {
		return nil
	}
	set := imap.UIDSetNum(uids...)
	storeFlags := &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}
	cmd := c.Store(set, storeFlags, nil)
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("imap store add seen: %w", err)
	}
	return nil
}

func logoutAndClose(c *imapclient.Client) {
	if err := c.Logout().Wait(); err != nil {
		log.Printf("[email] imap logout: %v", err)
	}
	_ = c.Close()
}

func subjectMatches(subject string, any []string) bool {
	if len(any) == 0 {
		return true
	}
	s := strings.ToLower(subject)
	for _, want := range any {
		if strings.Contains(s, strings.ToLower(strings.TrimSpace(want))) {
			return true
		}
	}
	return false
}
