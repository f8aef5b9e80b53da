// Package prom provides a sink that exposes error volumes as Prometheus
// counters. It persists nothing itself; wire it behind a multi sink next to
// a durable destination.
package prom

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lanwarden/errtrack/pkg/errtrack"
)

// SinkOption configures the prometheus sink.
type SinkOption func(*sinkConfig)

type sinkConfig struct {
	registerer prometheus.Registerer
	namespace  string
}

// WithRegisterer sets the registry the counters are registered with
// (default: prometheus.DefaultRegisterer). Tests pass an isolated registry.
func WithRegisterer(r prometheus.Registerer) SinkOption {
	return func(c *sinkConfig) {
		if r != nil {
			c.registerer = r
		}
	}
}

// WithNamespace sets the metric namespace (default: "errtrack").
func WithNamespace(ns string) SinkOption {
	return func(c *sinkConfig) {
		if ns != "" {
			c.namespace = ns
		}
	}
}

// promSink counts records by category and severity.
type promSink struct {
	records  *prometheus.CounterVec
	critical prometheus.Counter
}

// NewSink creates and registers the counters.
func NewSink(opts ...SinkOption) (errtrack.Sink, error) {
	cfg := &sinkConfig{
		registerer: prometheus.DefaultRegisterer,
		namespace:  "errtrack",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &promSink{
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.namespace,
				Name:      "records_total",
				Help:      "Total number of error records tracked",
			},
			[]string{"category", "severity"},
		),
		critical: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.namespace,
				Name:      "critical_total",
				Help:      "Total number of critical error records tracked",
			},
		),
	}

	if err := cfg.registerer.Register(s.records); err != nil {
		return nil, err
	}
	if err := cfg.registerer.Register(s.critical); err != nil {
		return nil, err
	}
	return s, nil
}

// Write increments the counters for the record's category and severity.
func (s *promSink) Write(ctx context.Context, rec errtrack.Record) error {
	s.records.WithLabelValues(rec.Category.String(), rec.Severity.String()).Inc()
	if rec.Severity == errtrack.SeverityCritical {
		s.critical.Inc()
	}
	return nil
}

// Flush is a no-op; counters are updated synchronously.
func (s *promSink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op; registries own metric lifecycles.
func (s *promSink) Close() error {
	return nil
}
