// logdir.go is the durable multi-file writer: one comprehensive log, one log
// per category, a critical-only log, and a periodically refreshed summary.

package errtrack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	comprehensiveLogName = "errors.log"
	criticalLogName      = "critical.log"
	summaryLogName       = "summary.log"

	recordDelimiter = "================================================================================"
)

// LogDirOption configures the log directory sink.
type LogDirOption func(*logDirConfig)

type logDirConfig struct {
	summaryEvery int
	statsSource  func() Stats
}

// WithSummaryEvery sets how many writes trigger a summary.log refresh
// (default: 10).
func WithSummaryEvery(n int) LogDirOption {
	return func(c *logDirConfig) {
		if n > 0 {
			c.summaryEvery = n
		}
	}
}

// WithStatsSource sets the snapshot function the summary log is rendered
// from, normally the owning tracker's Stats method.
func WithStatsSource(fn func() Stats) LogDirOption {
	return func(c *logDirConfig) {
		c.statsSource = fn
	}
}

// logDirSink appends records to a set of log files under one directory.
// It is safe for concurrent use, but when wrapped in NewAsyncSink the
// dispatcher worker is the sole writer and appends stay sequential.
type logDirSink struct {
	dir          string
	summaryEvery int
	statsSource  func() Stats
	start        time.Time

	mu     sync.Mutex
	files  map[string]*os.File
	writes int
	closed bool
}

// NewLogDirSink creates the multi-file sink rooted at dir. The directory is
// created if missing; an unwritable location fails here so the caller can
// degrade instead of losing records one by one later.
func NewLogDirSink(dir string, opts ...LogDirOption) (Sink, error) {
	cfg := &logDirConfig{
		summaryEvery: 10,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logdir: create %s: %w", dir, err)
	}

	s := &logDirSink{
		dir:          dir,
		summaryEvery: cfg.summaryEvery,
		statsSource:  cfg.statsSource,
		start:        time.Now(),
		files:        make(map[string]*os.File),
	}

	// Open the comprehensive log eagerly to surface permission problems.
	if _, err := s.file(comprehensiveLogName); err != nil {
		return nil, err
	}
	return s, nil
}

// Write appends the record to the comprehensive log, its category log, and
// (for critical severity) the critical log, then refreshes the summary when
// the write counter says so.
func (s *logDirSink) Write(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("logdir: sink is closed")
	}

	var errs []error

	if err := s.append(comprehensiveLogName, formatRecordBlock(rec)); err != nil {
		errs = append(errs, err)
	}
	if err := s.append(rec.Category.LogName(), formatRecordLine(rec)); err != nil {
		errs = append(errs, err)
	}
	if rec.Severity == SeverityCritical {
		if err := s.append(criticalLogName, formatRecordBlock(rec)); err != nil {
			errs = append(errs, err)
		}
	}

	s.writes++
	if s.writes%s.summaryEvery == 0 {
		if err := s.writeSummary(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Flush rewrites the summary so shutdown leaves it current.
func (s *logDirSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("logdir: sink is closed")
	}
	return s.writeSummary()
}

// Close closes every open log file.
func (s *logDirSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if err := s.writeSummary(); err != nil {
		errs = append(errs, err)
	}
	for name, f := range s.files {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("logdir: close %s: %w", name, err))
		}
	}
	s.files = nil
	return errors.Join(errs...)
}

// file returns the cached append handle for name, opening it on first use.
func (s *logDirSink) file(name string) (*os.File, error) {
	if f, ok := s.files[name]; ok {
		return f, nil
	}
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logdir: open %s: %w", path, err)
	}
	s.files[name] = f
	return f, nil
}

func (s *logDirSink) append(name, text string) error {
	f, err := s.file(name)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("logdir: write %s: %w", name, err)
	}
	return nil
}

// writeSummary rewrites summary.log from the latest aggregate snapshot.
func (s *logDirSink) writeSummary() error {
	if s.statsSource == nil {
		return nil
	}
	stats := s.statsSource()
	path := filepath.Join(s.dir, summaryLogName)
	if err := os.WriteFile(path, []byte(formatSummary(stats, s.start)), 0o644); err != nil {
		return fmt.Errorf("logdir: write %s: %w", path, err)
	}
	return nil
}

// formatRecordBlock renders the delimited comprehensive-log entry: a
// human-readable header followed by the machine-parseable JSON body.
func formatRecordBlock(rec Record) string {
	var sb strings.Builder

	sb.WriteString(recordDelimiter)
	sb.WriteByte('\n')
	sb.WriteString(fmt.Sprintf("[%s] %s %s: %s\n",
		rec.Timestamp.Format(time.RFC3339), rec.Severity, rec.Category, rec.Message))
	sb.WriteString(fmt.Sprintf("Location: %s @ %s:%d\n", rec.Function, rec.Module, rec.Line))

	body, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		// Records are plain values; this should not happen, but a degraded
		// entry beats a lost one.
		body = []byte(fmt.Sprintf(`{"record_id": %q, "marshal_error": %q}`, rec.RecordID, err))
	}
	sb.Write(body)
	sb.WriteByte('\n')

	return sb.String()
}

// formatRecordLine renders the one-line category-log entry.
func formatRecordLine(rec Record) string {
	return fmt.Sprintf("%s [%s] %s (%s @ %s:%d)\n",
		rec.Timestamp.Format(time.RFC3339), rec.Severity, rec.Message,
		rec.Function, rec.Module, rec.Line)
}

// formatSummary renders the human-readable aggregate summary.
func formatSummary(stats Stats, start time.Time) string {
	var sb strings.Builder

	sb.WriteString("ERROR TRACKING SUMMARY\n")
	sb.WriteString(recordDelimiter + "\n")
	sb.WriteString(fmt.Sprintf("Generated:        %s\n", time.Now().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Session duration: %s\n", stats.SessionDuration.Round(time.Second)))
	sb.WriteString(fmt.Sprintf("Total errors:     %d\n", stats.TotalErrors))
	if stats.DroppedWrites > 0 {
		sb.WriteString(fmt.Sprintf("Dropped writes:   %d\n", stats.DroppedWrites))
	}

	sb.WriteString("\nBy category:\n")
	for _, c := range Categories() {
		if n := stats.ByCategory[c]; n > 0 {
			sb.WriteString(fmt.Sprintf("  %-18s %d\n", c, n))
		}
	}

	sb.WriteString("\nBy severity:\n")
	for _, sev := range Severities() {
		if n := stats.BySeverity[sev]; n > 0 {
			sb.WriteString(fmt.Sprintf("  %-18s %d\n", sev, n))
		}
	}

	ps := CaptureProcessState(start)
	sb.WriteString("\nProcess:\n")
	sb.WriteString(fmt.Sprintf("  host         %s\n", ps.HostName))
	sb.WriteString(fmt.Sprintf("  memory       %d bytes\n", ps.MemoryBytes))
	sb.WriteString(fmt.Sprintf("  goroutines   %d\n", ps.GoroutineCount))
	sb.WriteString(fmt.Sprintf("  uptime       %dms\n", ps.UptimeMs))

	return sb.String()
}
