// global.go exposes package-level reporting functions backed by a lazily
// created default tracker, so subsystems can report without plumbing a
// *Tracker through every constructor. Tests should build isolated instances
// with New instead of sharing this state.

package errtrack

import (
	"context"
	"os"
	"sync"
)

// envLogDir overrides the default log directory for the default tracker.
const envLogDir = "ERRTRACK_LOG_DIR"

// defaultLogDir is used when the environment does not say otherwise.
const defaultLogDir = "error_logs"

var (
	defaultMu      sync.Mutex
	defaultTracker *Tracker
)

// Default returns the process-wide tracker, creating it on first use.
// The default persists through an async dispatcher into a log directory
// taken from $ERRTRACK_LOG_DIR (fallback "error_logs"). If the directory is
// not writable the default degrades to in-memory aggregation only, with a
// stderr notice; it never fails the caller.
func Default() *Tracker {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultTracker == nil {
		defaultTracker = newDefaultTracker()
	}
	return defaultTracker
}

// SetDefault replaces the process-wide tracker. The previous default, if
// any, is not closed; the caller owns both lifecycles.
func SetDefault(t *Tracker) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultTracker = t
}

func newDefaultTracker() *Tracker {
	t := New()

	dir := os.Getenv(envLogDir)
	if dir == "" {
		dir = defaultLogDir
	}

	inner, err := NewLogDirSink(dir, WithStatsSource(t.Stats))
	if err != nil {
		notify("log directory unavailable, keeping statistics in memory only: %v", err)
		return t
	}

	// Safe to swap before the tracker is visible to any caller.
	t.sink = NewAsyncSink(inner)
	return t
}

// Track reports one failure through the default tracker.
func Track(message string, opts ...TrackOption) {
	Default().track(1, message, opts)
}

// GetStats returns the default tracker's aggregate snapshot.
func GetStats() Stats {
	return Default().Stats()
}

// GetRecent returns up to n most recent records from the default tracker.
func GetRecent(n int) []Record {
	return Default().Recent(n)
}

// Shutdown flushes queued records and closes the default tracker's sink.
// Call before process exit so no report is silently dropped. A nil error
// means everything queued is durably written.
func Shutdown(ctx context.Context) error {
	defaultMu.Lock()
	t := defaultTracker
	defaultMu.Unlock()
	if t == nil {
		return nil
	}
	if err := t.Flush(ctx); err != nil {
		return err
	}
	return t.Close()
}
