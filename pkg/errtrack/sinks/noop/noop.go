// Package noop discards every record. It is the sink to reach for when a
// host application wants the in-memory aggregates and history but no
// durable output at all, and it doubles as a stand-in in benchmarks.
package noop

import (
	"context"

	"github.com/lanwarden/errtrack/pkg/errtrack"
)

type noopSink struct{}

// NewNoopSink returns a sink whose every method succeeds without doing
// anything.
func NewNoopSink() errtrack.Sink {
	return noopSink{}
}

func (noopSink) Write(ctx context.Context, rec errtrack.Record) error { return nil }
func (noopSink) Flush(ctx context.Context) error                      { return nil }
func (noopSink) Close() error                                         { return nil }
