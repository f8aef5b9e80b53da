// Package multi fans one record stream out to several sinks, typically a
// log directory next to a sqlite store or a metrics sink. One slow or
// failing destination never stops the others: every sink sees every call,
// and the failures come back joined.
//
// Note that Close closes every child; destinations a caller still wants to
// query afterwards belong outside the fan-out.
package multi

import (
	"context"
	"errors"

	"github.com/lanwarden/errtrack/pkg/errtrack"
)

type multiSink struct {
	sinks []errtrack.Sink
}

// NewMultiSink builds the fan-out over the given sinks, in order.
func NewMultiSink(sinks ...errtrack.Sink) errtrack.Sink {
	return &multiSink{sinks: sinks}
}

func (s *multiSink) Write(ctx context.Context, rec errtrack.Record) error {
	return s.each(func(sink errtrack.Sink) error { return sink.Write(ctx, rec) })
}

func (s *multiSink) Flush(ctx context.Context) error {
	return s.each(func(sink errtrack.Sink) error { return sink.Flush(ctx) })
}

func (s *multiSink) Close() error {
	return s.each(errtrack.Sink.Close)
}

// each applies op to every sink regardless of intermediate failures.
func (s *multiSink) each(op func(errtrack.Sink) error) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := op(sink); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
