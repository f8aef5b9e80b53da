// Package stderr provides a sink that logs records to stderr in
// human-readable format. Useful for development and for headless runs where
// no log directory is available.
package stderr

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lanwarden/errtrack/pkg/errtrack"
)

// StderrSinkOption configures the stderr sink.
type StderrSinkOption func(*stderrSinkConfig)

type stderrSinkConfig struct {
	verbose bool
}

// WithVerbose enables full record details including stack traces.
func WithVerbose() StderrSinkOption {
	return func(c *stderrSinkConfig) {
		c.verbose = true
	}
}

// stderrSink writes records to stderr in human-readable format.
type stderrSink struct {
	verbose bool
}

// NewStderrSink creates a sink that writes to stderr.
func NewStderrSink(opts ...StderrSinkOption) errtrack.Sink {
	cfg := &stderrSinkConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &stderrSink{
		verbose: cfg.verbose,
	}
}

// Write formats and outputs the record to stderr.
func (s *stderrSink) Write(ctx context.Context, rec errtrack.Record) error {
	// Format: [ERRTRACK] <timestamp> <SEVERITY> <CATEGORY> <message> (<function> @ <module>:<line>)
	timestamp := rec.Timestamp.Format("2006-01-02T15:04:05Z07:00")

	fmt.Fprintf(os.Stderr, "[ERRTRACK] %s %s %s %s (%s @ %s:%d)\n",
		timestamp, rec.Severity, rec.Category, rec.Message,
		rec.Function, rec.Module, rec.Line)

	if rec.ExceptionMessage != "" {
		fmt.Fprintf(os.Stderr, "        Cause: %s: %s\n", rec.ExceptionType, rec.ExceptionMessage)
	}

	if len(rec.Context) > 0 {
		fmt.Fprintf(os.Stderr, "        Context:\n")
		for k, v := range rec.Context {
			fmt.Fprintf(os.Stderr, "          %s=%s\n", k, v)
		}
	}

	if s.verbose && rec.StackTrace != "" {
		fmt.Fprintf(os.Stderr, "        Stack trace:\n")
		for _, line := range strings.Split(rec.StackTrace, "\n") {
			fmt.Fprintf(os.Stderr, "          %s\n", line)
		}
	}

	return nil
}

// Flush is a no-op for stderr sink.
func (s *stderrSink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op for stderr sink.
func (s *stderrSink) Close() error {
	return nil
}
