// tracker.go provides the Tracker facade that subsystems report errors through.

package errtrack

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// defaultHistorySize is the ring buffer capacity when none is configured.
const defaultHistorySize = 100

// Option configures a Tracker.
type Option func(*trackerConfig)

type trackerConfig struct {
	sink        Sink
	historySize int
	scrubber    *Scrubber
	now         func() time.Time
}

// WithSink sets the durable sink for the tracker.
func WithSink(sink Sink) Option {
	return func(c *trackerConfig) {
		c.sink = sink
	}
}

// WithHistorySize sets the ring buffer capacity (default: 100).
func WithHistorySize(n int) Option {
	return func(c *trackerConfig) {
		if n > 0 {
			c.historySize = n
		}
	}
}

// WithScrubber configures the tracker with a custom scrubber configuration.
func WithScrubber(cfg ScrubberConfig) Option {
	return func(c *trackerConfig) {
		c.scrubber = NewScrubber(cfg)
	}
}

// WithDefaultScrubbing enables scrubbing with production-safe defaults.
func WithDefaultScrubbing() Option {
	return func(c *trackerConfig) {
		c.scrubber = NewScrubber(DefaultScrubberConfig())
	}
}

// WithNow sets the clock used for timestamps and session duration.
// Intended for tests.
func WithNow(now func() time.Time) Option {
	return func(c *trackerConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// Tracker is the shared error-tracking facade. Any subsystem may call Track
// concurrently; the tracker assumes nothing about the caller's goroutines.
// Track never panics and never reports a failure back to the caller.
type Tracker struct {
	sessionID string
	sink      Sink
	scrubber  *Scrubber
	agg       *aggregator
	now       func() time.Time
}

// New creates a Tracker. With no options it aggregates in memory and
// discards durable output (noop sink).
func New(opts ...Option) *Tracker {
	cfg := &trackerConfig{
		historySize: defaultHistorySize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	// Default to a noop sink if none provided.
	if cfg.sink == nil {
		cfg.sink = &noopSinkInternal{}
	}

	return &Tracker{
		sessionID: uuid.NewString(),
		sink:      cfg.sink,
		scrubber:  cfg.scrubber,
		agg:       newAggregator(cfg.historySize, cfg.now),
		now:       cfg.now,
	}
}

// SessionID identifies this tracker instance.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// TrackOption supplies optional detail for a single Track call.
type TrackOption func(*trackInput)

type trackInput struct {
	err      error
	stack    string
	site     *callSite
	category *Category
	severity *Severity
	context  map[string]any
}

// WithError attaches the underlying Go error to the record.
func WithError(err error) TrackOption {
	return func(in *trackInput) {
		in.err = err
	}
}

// WithCategory sets the record's category explicitly, bypassing the
// classifier.
func WithCategory(c Category) TrackOption {
	return func(in *trackInput) {
		in.category = &c
	}
}

// WithSeverity sets the record's severity (default: SeverityMedium).
func WithSeverity(s Severity) TrackOption {
	return func(in *trackInput) {
		in.severity = &s
	}
}

// WithContext attaches free-form key/value context. Values are coerced to
// strings; the tracker does not interpret them.
func WithContext(ctx map[string]any) TrackOption {
	return func(in *trackInput) {
		in.context = ctx
	}
}

// withStack attaches a captured stack trace. Used by Recover.
func withStack(stack string) TrackOption {
	return func(in *trackInput) {
		in.stack = stack
	}
}

// withSite overrides automatic call-site capture. Used by Recover, where
// frame counting is unreliable.
func withSite(site callSite) TrackOption {
	return func(in *trackInput) {
		in.site = &site
	}
}

// Track reports one failure. It updates the in-memory aggregates
// synchronously and hands the record to the sink; it never blocks on disk
// and never panics, whatever state the sink is in.
func (t *Tracker) Track(message string, opts ...TrackOption) {
	t.track(1, message, opts)
}

// track builds and records one Record. skip is the number of stack frames
// between track's caller and the subsystem being blamed for the error.
func (t *Tracker) track(skip int, message string, opts []TrackOption) {
	defer func() {
		if r := recover(); r != nil {
			notify("panic while tracking error: %v", r)
		}
	}()

	var in trackInput
	for _, opt := range opts {
		opt(&in)
	}

	rec := Record{
		RecordID:   uuid.NewString(),
		SessionID:  t.sessionID,
		Timestamp:  t.now(),
		Message:    message,
		Severity:   SeverityMedium,
		StackTrace: in.stack,
	}

	if in.err != nil {
		rec.ExceptionType = fmt.Sprintf("%T", in.err)
		rec.ExceptionMessage = in.err.Error()
	}
	if in.severity != nil {
		rec.Severity = *in.severity
	}
	if in.category != nil {
		rec.Category = *in.category
	} else {
		rec.Category = Classify(message + " " + rec.ExceptionMessage)
	}
	if len(in.context) > 0 {
		rec.Context = make(map[string]string, len(in.context))
		for k, v := range in.context {
			rec.Context[k] = fmt.Sprint(v)
		}
	}

	site := captureCallSite(skip + 1)
	if in.site != nil {
		site = *in.site
	}
	rec.Module = site.Module
	rec.Function = site.Function
	rec.Line = site.Line

	if t.scrubber != nil {
		rec.Message = t.scrubber.ScrubMessage(rec.Message)
		rec.ExceptionMessage = t.scrubber.ScrubMessage(rec.ExceptionMessage)
		rec.StackTrace = t.scrubber.ScrubStackTrace(rec.StackTrace)
		rec.Context = t.scrubber.ScrubContext(rec.Context)
	}

	rec.Fingerprint = fingerprint(rec)

	// Aggregates first: statistics stay correct even when the sink later
	// fails or drops the record.
	t.agg.record(rec)

	if err := t.sink.Write(context.Background(), rec); err != nil {
		notify("sink write failed: %v", err)
	}
}

// Stats returns a consistent snapshot of the running aggregates.
func (t *Tracker) Stats() Stats {
	stats := t.agg.snapshot()
	if counter, ok := t.sink.(interface{ Dropped() int64 }); ok {
		stats.DroppedWrites = counter.Dropped()
	}
	return stats
}

// Recent returns up to n records, most recent first. Pure read.
func (t *Tracker) Recent(n int) []Record {
	return t.agg.recent(n)
}

// Flush blocks until records queued for the sink are persisted.
func (t *Tracker) Flush(ctx context.Context) error {
	return t.sink.Flush(ctx)
}

// Close flushes and releases the sink. The tracker's aggregates remain
// readable after Close; Track calls still update them.
func (t *Tracker) Close() error {
	return t.sink.Close()
}

// notify emits a best-effort side-channel notice. Internal faults are never
// allowed to reach a producer's call stack.
func notify(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "errtrack: "+format+"\n", args...)
}

// noopSinkInternal is an internal noop sink to avoid import cycles.
type noopSinkInternal struct{}

func (s *noopSinkInternal) Write(ctx context.Context, rec Record) error {
	return nil
}

func (s *noopSinkInternal) Flush(ctx context.Context) error {
	return nil
}

func (s *noopSinkInternal) Close() error {
	return nil
}
