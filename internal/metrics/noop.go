package metrics

import "time"

// NoopSink is used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) RunStarted(trigger string) {}

func (n *NoopSink) RunCompleted(trigger string, d time.Duration, jobsUpserted int, err error) {}

func (n *NoopSink) SourceFetched(source string, leads int) {}
