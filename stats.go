package talon

// StepStats summarizes one Simulate call for an injected metrics sink
type StepStats struct {
	Tick uint64

	PairsTested   int
	ContactPairs  int
	ContactPoints int
	Constraints   int
	Batches       int
	Rows          int

	CacheRebuilt bool
}

// StatsSink receives per-step metrics. Injected at construction via
// WithStatsSink; RecordStep runs synchronously at the end of every step, so
// implementations should be cheap or hand off.
type StatsSink interface {
	RecordStep(StepStats)
}

type nopStats struct{}

func (nopStats) RecordStep(StepStats) {}
