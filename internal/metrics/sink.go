package metrics

import "time"

// Sink records run metrics. All methods are fire-and-forget:
// implementations must not block or propagate errors.
type Sink interface {
	RunStarted(trigger string)
	RunCompleted(trigger string, duration time.Duration, jobsUpserted int, err error)
	SourceFetched(source string, leads int)
}
