package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink with the Prometheus client library.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	runsTotal         *prometheus.CounterVec
	runErrorsTotal    *prometheus.CounterVec
	runDuration       prometheus.Histogram
	jobsUpsertedTotal prometheus.Counter
	sourceLeadsTotal  *prometheus.CounterVec
}

func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scraperd_runs_total",
			Help: "Total scrape runs, by trigger.",
		}, []string{"trigger"}),
		runErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scraperd_run_errors_total",
			Help: "Total failed scrape runs, by trigger.",
		}, []string{"trigger"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scraperd_run_duration_seconds",
			Help:    "Duration of a scrape run in seconds.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		jobsUpsertedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scraperd_jobs_upserted_total",
			Help: "Total job rows upserted to the data store.",
		}),
		sourceLeadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scraperd_source_leads_total",
			Help: "Total leads fetched, by source.",
		}, []string{"source"}),
	}

	s.register(reg, s.runsTotal, "scraperd_runs_total")
	s.register(reg, s.runErrorsTotal, "scraperd_run_errors_total")
	s.register(reg, s.runDuration, "scraperd_run_duration_seconds")
	s.register(reg, s.jobsUpsertedTotal, "scraperd_jobs_upserted_total")
	s.register(reg, s.sourceLeadsTotal, "scraperd_source_leads_total")
	return s
}

func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		log.Printf("metrics: failed to register %s: %v", name, err)
	}
}

func (s *PrometheusSink) RunStarted(trigger string) {
	s.runsTotal.WithLabelValues(trigger).Inc()
}

func (s *PrometheusSink) RunCompleted(trigger string, d time.Duration, jobsUpserted int, err error) {
	s.runDuration.Observe(d.Seconds())
	s.jobsUpsertedTotal.Add(float64(jobsUpserted))
	if err != nil {
		s.runErrorsTotal.WithLabelValues(trigger).Inc()
	}
}

func (s *PrometheusSink) SourceFetched(source string, leads int) {
	s.sourceLeadsTotal.WithLabelValues(source).Add(float64(leads))
}
