package composer

import (
	"slices"
	"sync"
)

// Snapshot is the latest monitor evaluation.
type Snapshot struct {
	// EvaluatedAt is the evaluation time in seconds since boot.
	EvaluatedAt float64
	// Active lists the messages of the triggers that fired last.
	Active []string
	// Fired counts fires per trigger message since start.
	Fired map[string]uint64
}

// Feed publishes evaluations to readers outside the partition.
type Feed struct {
	mu       sync.Mutex
	snapshot Snapshot
}

// NewFeed returns an empty feed.
func NewFeed() *Feed {
	return &Feed{
		snapshot: Snapshot{Fired: make(map[string]uint64)},
	}
}

// Publish records one evaluation.
func (f *Feed) Publish(evaluatedAt float64, active []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.snapshot.EvaluatedAt = evaluatedAt
	f.snapshot.Active = slices.Clone(active)

	for _, message := range active {
		f.snapshot.Fired[message]++
	}
}

// Snapshot returns a copy of the latest evaluation.
func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	fired := make(map[string]uint64, len(f.snapshot.Fired))
	for message, count := range f.snapshot.Fired {
		fired[message] = count
	}

	return Snapshot{
		EvaluatedAt: f.snapshot.EvaluatedAt,
		Active:      slices.Clone(f.snapshot.Active),
		Fired:       fired,
	}
}
