package noop

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lanwarden/errtrack/pkg/errtrack"
)

func TestNoopSink_ImplementsSinkInterface(t *testing.T) {
	var _ errtrack.Sink = NewNoopSink()
}

func TestNoopSink_Write_ReturnsNil(t *testing.T) {
	sink := NewNoopSink()

	rec := errtrack.Record{
		RecordID:  "rec-123",
		Timestamp: time.Now(),
		Severity:  errtrack.SeverityHigh,
		Category:  errtrack.CategorySystem,
		Message:   "test error",
	}

	if err := sink.Write(context.Background(), rec); err != nil {
		t.Errorf("Write returned error: %v", err)
	}
}

func TestNoopSink_Flush_ReturnsNil(t *testing.T) {
	sink := NewNoopSink()
	if err := sink.Flush(context.Background()); err != nil {
		t.Errorf("Flush returned error: %v", err)
	}
}

func TestNoopSink_Close_ReturnsNil(t *testing.T) {
	sink := NewNoopSink()
	if err := sink.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}

func TestNoopSink_MultipleWrites(t *testing.T) {
	sink := NewNoopSink()

	for i := 0; i < 100; i++ {
		rec := errtrack.Record{RecordID: fmt.Sprintf("rec-%d", i)}
		if err := sink.Write(context.Background(), rec); err != nil {
			t.Fatalf("Write %d returned error: %v", i, err)
		}
	}
}
