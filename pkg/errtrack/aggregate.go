// aggregate.go maintains running counters and the bounded recent-record history.

package errtrack

import (
	"sync"
	"time"
)

// Stats is a consistent snapshot of the tracker's running aggregates.
// Counters reflect every record ever built this session, including records
// the durable sink later dropped under backpressure.
type Stats struct {
	TotalErrors     int64              `json:"total_errors"`
	ByCategory      map[Category]int64 `json:"errors_by_category"`
	BySeverity      map[Severity]int64 `json:"errors_by_severity"`
	SessionDuration time.Duration      `json:"session_duration"`
	DroppedWrites   int64              `json:"dropped_writes,omitempty"`
}

// aggregator holds the only state mutated by multiple producer goroutines.
// One mutex guards both the counters and the ring buffer so a snapshot
// always reflects a state the aggregator actually held.
type aggregator struct {
	mu         sync.Mutex
	total      int64
	byCategory map[Category]int64
	bySeverity map[Severity]int64

	// Fixed-capacity ring, oldest evicted first. Eviction affects only
	// what Recent can return, never the counters.
	ring []Record
	next int
	size int

	start time.Time
	now   func() time.Time
}

func newAggregator(capacity int, now func() time.Time) *aggregator {
	if capacity <= 0 {
		capacity = defaultHistorySize
	}
	return &aggregator{
		byCategory: make(map[Category]int64),
		bySeverity: make(map[Severity]int64),
		ring:       make([]Record, capacity),
		start:      now(),
		now:        now,
	}
}

// record updates all counters and pushes into the ring buffer under one
// critical section. The lock is held only for a few increments and a copy.
func (a *aggregator) record(rec Record) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	a.byCategory[rec.Category]++
	a.bySeverity[rec.Severity]++

	a.ring[a.next] = rec
	a.next = (a.next + 1) % len(a.ring)
	if a.size < len(a.ring) {
		a.size++
	}
}

// snapshot returns copies of the current counts plus the session duration.
func (a *aggregator) snapshot() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	byCategory := make(map[Category]int64, len(a.byCategory))
	for c, n := range a.byCategory {
		byCategory[c] = n
	}
	bySeverity := make(map[Severity]int64, len(a.bySeverity))
	for s, n := range a.bySeverity {
		bySeverity[s] = n
	}

	return Stats{
		TotalErrors:     a.total,
		ByCategory:      byCategory,
		BySeverity:      bySeverity,
		SessionDuration: a.now().Sub(a.start),
	}
}

// recent returns up to n buffered records, most recent first.
func (a *aggregator) recent(n int) []Record {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n > a.size {
		n = a.size
	}
	if n <= 0 {
		return nil
	}

	out := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		idx := (a.next - i + len(a.ring)) % len(a.ring)
		out = append(out, a.ring[idx])
	}
	return out
}
