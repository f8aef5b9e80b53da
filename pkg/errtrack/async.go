// async.go implements the asynchronous dispatcher between producers and the
// durable sink: a bounded queue drained by a single background worker.

package errtrack

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// AsyncOption configures the async dispatcher.
type AsyncOption func(*asyncConfig)

type asyncConfig struct {
	queueSize int
	onDropped func(count int)
}

// WithQueueSize sets the maximum number of queued records (default: 1000).
func WithQueueSize(size int) AsyncOption {
	return func(c *asyncConfig) {
		if size > 0 {
			c.queueSize = size
		}
	}
}

// WithOnDropped sets a callback invoked when records are dropped due to
// queue overflow.
func WithOnDropped(fn func(count int)) AsyncOption {
	return func(c *asyncConfig) {
		c.onDropped = fn
	}
}

// asyncSink wraps a sink with a bounded queue. The single worker goroutine
// is the sole caller of the inner sink's Write, so inner sinks need not
// serialize their own file appends.
type asyncSink struct {
	inner     Sink
	queue     chan Record
	done      chan struct{}
	closeOnce sync.Once
	closeMu   sync.Mutex
	closed    bool
	wg        sync.WaitGroup
	dropped   atomic.Int64
	onDropped func(count int)
}

// NewAsyncSink wraps a sink with a bounded queue for asynchronous writes.
// Write returns immediately; records are persisted in the background. When
// the queue is full, the oldest queued record is dropped to make room —
// durability is best-effort under sustained overload, while the tracker's
// in-memory statistics (updated before enqueue) stay exact.
func NewAsyncSink(inner Sink, opts ...AsyncOption) Sink {
	cfg := &asyncConfig{
		queueSize: 1000,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &asyncSink{
		inner:     inner,
		queue:     make(chan Record, cfg.queueSize),
		done:      make(chan struct{}),
		onDropped: cfg.onDropped,
	}

	s.wg.Add(1)
	go s.processLoop()

	return s
}

// processLoop drains the queue and writes to the inner sink. Inner sink
// failures degrade to a stderr notice; the worker keeps running and keeps
// accepting records.
func (s *asyncSink) processLoop() {
	defer s.wg.Done()
	for {
		select {
		case rec := <-s.queue:
			if err := s.inner.Write(context.Background(), rec); err != nil {
				notify("dispatcher write failed: %v", err)
			}
		case <-s.done:
			// Drain remaining records before exit; a queued record must
			// never be silently lost on normal shutdown.
			for {
				select {
				case rec := <-s.queue:
					if err := s.inner.Write(context.Background(), rec); err != nil {
						notify("dispatcher write failed: %v", err)
					}
				default:
					return
				}
			}
		}
	}
}

// Write enqueues a record for asynchronous persistence. It never blocks:
// if the queue is full, the oldest queued record is dropped and counted.
// closeMu is held across the enqueue so a concurrent Close cannot slip
// between the closed check and the send.
func (s *asyncSink) Write(ctx context.Context, rec Record) error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()

	if s.closed {
		return errors.New("async sink is closed")
	}

	select {
	case s.queue <- rec:
		return nil
	default:
		s.dropOldestAndEnqueue(rec)
		return nil
	}
}

// dropOldestAndEnqueue drops the oldest queued record and enqueues the new
// one. Only records not yet durably written can be dropped; queue order of
// the remaining records is preserved.
func (s *asyncSink) dropOldestAndEnqueue(rec Record) {
	select {
	case <-s.queue:
		s.countDrop(1)
	default:
		// Queue was emptied by the worker in the meantime.
	}

	select {
	case s.queue <- rec:
	default:
		// Still full, drop the new record instead.
		s.countDrop(1)
	}
}

func (s *asyncSink) countDrop(n int) {
	s.dropped.Add(int64(n))
	if s.onDropped != nil {
		s.onDropped(n)
	}
}

// Dropped returns the number of records dropped under backpressure.
// The tracker surfaces this in Stats so operators can detect loss.
func (s *asyncSink) Dropped() int64 {
	return s.dropped.Load()
}

// Flush blocks until all queued records are processed.
func (s *asyncSink) Flush(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if len(s.queue) == 0 {
				// Give the worker a moment to finish the last record.
				time.Sleep(10 * time.Millisecond)
				return s.inner.Flush(ctx)
			}
		}
	}
}

// Close stops the worker, drains the queue, and closes the inner sink.
// The queue channel is never closed; after the closed flag is set no
// producer can reach it, so leaving it open costs nothing and a late
// Write can never panic on a closed channel.
func (s *asyncSink) Close() error {
	s.closeOnce.Do(func() {
		s.closeMu.Lock()
		s.closed = true
		s.closeMu.Unlock()

		close(s.done)
		s.wg.Wait()
	})

	return s.inner.Close()
}
