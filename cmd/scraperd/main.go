package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"

	"jobscraper/internal/config"
	"jobscraper/internal/domain"
	"jobscraper/internal/events"
	"jobscraper/internal/httpapi"
	"jobscraper/internal/metrics"
	"jobscraper/internal/runner"
	"jobscraper/internal/scheduler"
	"jobscraper/internal/secrets"
	"jobscraper/internal/store"
	"jobscraper/internal/supabase"
)

var errInvalidConfig = errors.New("config failed validation")

func main() {
	var (
		once    = flag.Bool("once", false, "run one scrape and exit; exit status reflects the run")
		trigger = flag.String("trigger", "schedule", "trigger kind recorded for -once runs (schedule|manual)")
	)
	flag.Parse()

	// Data dir: use env if provided, else local folder.
	dataDir := os.Getenv("SCRAPERD_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		normalized, vr := config.NormalizeAndValidate(cfg)
		for _, warn := range vr.Warnings {
			log.Printf("[config] warning: %s", warn)
		}
		if !vr.OK() {
			for _, e := range vr.Errors {
				log.Printf("[config] error: %s", e)
			}
			return cfg, errInvalidConfig
		}
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	// Credentials are resolved once, up front. A missing variable is a
	// startup failure, not a mid-run surprise.
	creds := config.CredentialsFromEnv()
	if creds.SupabaseKey == "" {
		if key, kerr := secrets.GetAnonKey(); kerr == nil {
			creds.SupabaseKey = key
		}
	}
	if err := creds.Validate(); err != nil {
		log.Fatalf("startup: %v", err)
	}

	// Only one process may scrape against a data dir at a time.
	lock := flock.New(filepath.Join(dataDir, "scraperd.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("run lock: %v", err)
	}
	if !locked {
		log.Fatalf("another scraper instance holds %s", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	db, err := store.Open(filepath.Join(dataDir, "scraperd.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}
	if n, err := store.CleanupOldRuns(db.Pool); err == nil && n > 0 {
		log.Printf("[store] pruned %d old runs", n)
	}
	if n, err := store.CleanupOldSeen(db.Pool); err == nil && n > 0 {
		log.Printf("[store] pruned %d old seen jobs", n)
	}

	sink := supabase.New(supabase.Config{
		BaseURL:        creds.SupabaseURL,
		Key:            creds.SupabaseKey,
		Table:          cfg.Supabase.Table,
		TimeoutSeconds: cfg.Supabase.TimeoutSeconds,
	})

	hub := events.NewHub()
	promSink := metrics.NewPrometheusSink(prometheus.DefaultRegisterer)

	run := runner.New(db.Pool, &cfgVal, sink, hub, promSink)
	run.LookupEmailPassword = secrets.GetIMAPPassword

	if *once {
		kind := domain.TriggerSchedule
		if *trigger == "manual" {
			kind = domain.TriggerManual
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		if _, err := run.RunOnce(ctx, kind); err != nil {
			// the runner already emitted the failure diagnostic
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched, err := scheduler.New(scheduler.Config{
		Cron:     cfg.Scheduler.Cron,
		Timezone: cfg.Scheduler.Timezone,
	}, func(taskCtx context.Context, kind domain.TriggerKind) {
		runCtx, cancel := context.WithTimeout(taskCtx, 30*time.Minute)
		defer cancel()
		if _, err := run.RunOnce(runCtx, kind); err == runner.ErrAlreadyRunning {
			log.Printf("[scheduler] firing skipped: run already in flight")
		}
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := sched.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer sched.Stop()

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		Runner:      run,
		NextFire:    sched.Next,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	})

	srv := &http.Server{
		Addr: cfg.App.Addr,
		Handler: httpapi.Chain(mux,
			httpapi.RequestID,
			httpapi.AccessLog,
			httpapi.Recover,
			httpapi.Cors,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("engine listening on http://%s (env=%s)", cfg.App.Addr, creds.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
