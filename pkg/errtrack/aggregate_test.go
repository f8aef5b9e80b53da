package errtrack

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func testRecord(i int, cat Category, sev Severity) Record {
	return Record{
		RecordID:  fmt.Sprintf("rec-%d", i),
		Timestamp: time.Date(2026, 8, 29, 12, 0, i, 0, time.UTC),
		Message:   fmt.Sprintf("error %d", i),
		Category:  cat,
		Severity:  sev,
	}
}

func TestAggregator_CountsSumToTotal(t *testing.T) {
	agg := newAggregator(10, time.Now)

	agg.record(testRecord(1, CategoryFirewall, SeverityLow))
	agg.record(testRecord(2, CategoryFirewall, SeverityHigh))
	agg.record(testRecord(3, CategoryGUI, SeverityLow))
	agg.record(testRecord(4, CategoryUnknown, SeverityCritical))

	stats := agg.snapshot()

	if stats.TotalErrors != 4 {
		t.Errorf("TotalErrors = %d, want 4", stats.TotalErrors)
	}

	var byCat, bySev int64
	for _, n := range stats.ByCategory {
		byCat += n
	}
	for _, n := range stats.BySeverity {
		bySev += n
	}
	if byCat != stats.TotalErrors {
		t.Errorf("sum of category counts = %d, want %d", byCat, stats.TotalErrors)
	}
	if bySev != stats.TotalErrors {
		t.Errorf("sum of severity counts = %d, want %d", bySev, stats.TotalErrors)
	}

	if stats.ByCategory[CategoryFirewall] != 2 {
		t.Errorf("ByCategory[FIREWALL] = %d, want 2", stats.ByCategory[CategoryFirewall])
	}
	if stats.BySeverity[SeverityLow] != 2 {
		t.Errorf("BySeverity[LOW] = %d, want 2", stats.BySeverity[SeverityLow])
	}
}

func TestAggregator_EvictionKeepsCounters(t *testing.T) {
	agg := newAggregator(3, time.Now)

	for i := 1; i <= 5; i++ {
		agg.record(testRecord(i, CategorySystem, SeverityMedium))
	}

	stats := agg.snapshot()
	if stats.TotalErrors != 5 {
		t.Errorf("TotalErrors = %d, want 5 (eviction must not touch counters)", stats.TotalErrors)
	}

	recent := agg.recent(10)
	if len(recent) != 3 {
		t.Fatalf("recent returned %d records, want 3 (ring capacity)", len(recent))
	}
	// Most recent first: 5, 4, 3.
	for i, want := range []string{"rec-5", "rec-4", "rec-3"} {
		if recent[i].RecordID != want {
			t.Errorf("recent[%d].RecordID = %s, want %s", i, recent[i].RecordID, want)
		}
	}
}

func TestAggregator_RecentTimestampsNonIncreasing(t *testing.T) {
	agg := newAggregator(10, time.Now)
	for i := 1; i <= 6; i++ {
		agg.record(testRecord(i, CategoryUnknown, SeverityMedium))
	}

	recent := agg.recent(6)
	for i := 1; i < len(recent); i++ {
		if recent[i].Timestamp.After(recent[i-1].Timestamp) {
			t.Errorf("recent[%d] is newer than recent[%d]", i, i-1)
		}
	}
}

func TestAggregator_RecentHonorsN(t *testing.T) {
	agg := newAggregator(10, time.Now)
	for i := 1; i <= 4; i++ {
		agg.record(testRecord(i, CategoryUnknown, SeverityMedium))
	}

	if got := agg.recent(2); len(got) != 2 {
		t.Errorf("recent(2) returned %d records, want 2", len(got))
	}
	if got := agg.recent(0); got != nil {
		t.Errorf("recent(0) = %v, want nil", got)
	}
	if got := agg.recent(-1); got != nil {
		t.Errorf("recent(-1) = %v, want nil", got)
	}
}

func TestAggregator_SessionDuration(t *testing.T) {
	current := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	agg := newAggregator(10, now)
	current = current.Add(90 * time.Second)

	stats := agg.snapshot()
	if stats.SessionDuration != 90*time.Second {
		t.Errorf("SessionDuration = %v, want 90s", stats.SessionDuration)
	}
}

func TestAggregator_SnapshotReturnsCopies(t *testing.T) {
	agg := newAggregator(10, time.Now)
	agg.record(testRecord(1, CategoryGUI, SeverityLow))

	stats := agg.snapshot()
	stats.ByCategory[CategoryGUI] = 99

	if agg.snapshot().ByCategory[CategoryGUI] != 1 {
		t.Error("mutating a snapshot must not affect the aggregator")
	}
}

func TestStats_MarshalsSeverityKeysAsNames(t *testing.T) {
	stats := Stats{
		TotalErrors: 3,
		ByCategory:  map[Category]int64{CategoryFirewall: 3},
		BySeverity:  map[Severity]int64{SeverityLow: 2, SeverityCritical: 1},
	}

	data, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	for _, want := range []string{`"LOW":2`, `"CRITICAL":1`, `"FIREWALL":3`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("marshaled stats should contain %s, got %s", want, data)
		}
	}

	var decoded Stats
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if decoded.BySeverity[SeverityCritical] != 1 {
		t.Errorf("BySeverity[CRITICAL] = %d after round trip, want 1", decoded.BySeverity[SeverityCritical])
	}
}
