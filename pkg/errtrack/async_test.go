package errtrack

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAsyncSink_WriteReturnsImmediately(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	sink := NewAsyncSink(&blockingSink{release: release}, WithQueueSize(10))

	start := time.Now()
	if err := sink.Write(context.Background(), Record{Message: "m"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Write took %v, should not block on the inner sink", elapsed)
	}
}

func TestAsyncSink_FlushDrainsQueue(t *testing.T) {
	inner := &testSink{}
	sink := NewAsyncSink(inner, WithQueueSize(100))

	for i := 0; i < 50; i++ {
		if err := sink.Write(context.Background(), Record{Message: "m"}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sink.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if got := len(inner.getRecords()); got != 50 {
		t.Errorf("inner received %d records after Flush, want 50", got)
	}
}

func TestAsyncSink_DropsOldestWhenFull(t *testing.T) {
	release := make(chan struct{})
	var dropNotices atomic.Int64

	inner := &blockingSink{release: release}
	sink := NewAsyncSink(inner, WithQueueSize(2), WithOnDropped(func(count int) {
		dropNotices.Add(int64(count))
	}))

	// Let the worker pick up and block on the first record.
	if err := sink.Write(context.Background(), Record{Message: "r0"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	// Fill the queue, then overflow it.
	for i := 1; i <= 6; i++ {
		if err := sink.Write(context.Background(), Record{Message: "r"}); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}

	dropped, ok := sink.(interface{ Dropped() int64 })
	if !ok {
		t.Fatal("async sink should expose Dropped()")
	}
	if got := dropped.Dropped(); got < 4 {
		t.Errorf("Dropped() = %d, want >= 4 with queue size 2 and 6 overflowing writes", got)
	}
	if dropNotices.Load() != dropped.Dropped() {
		t.Errorf("onDropped saw %d, Dropped() = %d", dropNotices.Load(), dropped.Dropped())
	}

	close(release)
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestAsyncSink_CloseDrainsAndClosesInner(t *testing.T) {
	inner := &closeTrackingSink{}
	sink := NewAsyncSink(inner, WithQueueSize(100))

	for i := 0; i < 20; i++ {
		sink.Write(context.Background(), Record{Message: "m"})
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := len(inner.getRecords()); got != 20 {
		t.Errorf("inner received %d records, want all 20 drained on Close", got)
	}
	if !inner.closed.Load() {
		t.Error("Close should close the inner sink")
	}
}

func TestAsyncSink_WriteAfterClose(t *testing.T) {
	sink := NewAsyncSink(&testSink{})
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sink.Write(context.Background(), Record{Message: "m"}); err == nil {
		t.Error("Write after Close should return an error")
	}
}

func TestAsyncSink_ConcurrentWriteAndClose(t *testing.T) {
	// Writes racing Close must either enqueue or return the closed error,
	// never panic on a closed channel.
	for i := 0; i < 100; i++ {
		sink := NewAsyncSink(&testSink{}, WithQueueSize(2))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				sink.Write(context.Background(), Record{Message: "m"})
			}
		}()

		if err := sink.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		wg.Wait()
	}
}

func TestAsyncSink_CloseIdempotent(t *testing.T) {
	sink := NewAsyncSink(&testSink{})
	if err := sink.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

// closeTrackingSink records writes and whether Close was called.
type closeTrackingSink struct {
	testSink
	closed atomic.Bool
}

func (s *closeTrackingSink) Close() error {
	s.closed.Store(true)
	return nil
}
