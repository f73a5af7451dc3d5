package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusSinkCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewPrometheusSink(reg)

	s.RunStarted("schedule")
	s.RunStarted("schedule")
	s.RunStarted("manual")
	s.RunCompleted("schedule", 42*time.Second, 12, nil)
	s.RunCompleted("manual", time.Second, 0, errors.New("boom"))
	s.SourceFetched("naukri", 70)

	if got := testutil.ToFloat64(s.runsTotal.WithLabelValues("schedule")); got != 2 {
		t.Errorf("runs{schedule} = %v", got)
	}
	if got := testutil.ToFloat64(s.runErrorsTotal.WithLabelValues("manual")); got != 1 {
		t.Errorf("run_errors{manual} = %v", got)
	}
	if got := testutil.ToFloat64(s.runErrorsTotal.WithLabelValues("schedule")); got != 0 {
		t.Errorf("run_errors{schedule} = %v", got)
	}
	if got := testutil.ToFloat64(s.jobsUpsertedTotal); got != 12 {
		t.Errorf("jobs_upserted = %v", got)
	}
	if got := testutil.ToFloat64(s.sourceLeadsTotal.WithLabelValues("naukri")); got != 70 {
		t.Errorf("source_leads{naukri} = %v", got)
	}
}

func TestPrometheusSinkDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewPrometheusSink(reg)
	// second sink on the same registry logs the collision but must not panic
	_ = NewPrometheusSink(reg)
}
