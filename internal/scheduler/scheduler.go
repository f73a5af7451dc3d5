package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"jobscraper/internal/domain"
)

// Task is what the trigger fires. It receives which trigger kind fired so
// run records can tell a scheduled firing from a manual one.
type Task func(ctx context.Context, trigger domain.TriggerKind)

type Config struct {
	Cron     string // 5-field expression, e.g. "0 6 * * *"
	Timezone string // IANA name, defaults to UTC
}

// Service owns the standing schedule and the manual fire path. It knows
// nothing about scraping; the task is opaque to it.
type Service struct {
	mu sync.Mutex

	cfg    Config
	parser cron.Parser
	loc    *time.Location
	task   Task

	c       *cron.Cron
	entryID cron.EntryID
}

func New(cfg Config, task Task) (*Service, error) {
	if task == nil {
		return nil, errors.New("scheduler: task is required")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(cfg.Cron); err != nil {
		return nil, fmt.Errorf("scheduler: parse cron %q: %w", cfg.Cron, err)
	}

	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("scheduler: load tz %s: %w", tz, err)
	}

	return &Service{
		cfg:    cfg,
		parser: parser,
		loc:    loc,
		task:   task,
	}, nil
}

// Start registers the standing schedule and begins firing. Idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}

	s.c = cron.New(cron.WithParser(s.parser), cron.WithLocation(s.loc))

	id, err := s.c.AddFunc(s.cfg.Cron, func() {
		s.task(ctx, domain.TriggerSchedule)
	})
	if err != nil {
		s.c = nil
		return fmt.Errorf("scheduler: register %q: %w", s.cfg.Cron, err)
	}
	s.entryID = id

	s.c.Start()
	log.Printf("[scheduler] started cron=%q tz=%s next=%s",
		s.cfg.Cron, s.loc, s.nextLocked().Format(time.RFC3339))
	return nil
}

func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return
	}
	<-s.c.Stop().Done()
	s.c = nil
	log.Printf("[scheduler] stopped")
}

// TriggerManual fires the task immediately, bypassing the schedule.
// Exactly one invocation per call; overlap policy is the task's problem.
func (s *Service) TriggerManual(ctx context.Context) {
	s.task(ctx, domain.TriggerManual)
}

// Next reports the next scheduled fire time, zero if not started.
func (s *Service) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextLocked()
}

func (s *Service) nextLocked() time.Time {
	if s.c == nil {
		return time.Time{}
	}
	return s.c.Entry(s.entryID).Next
}
