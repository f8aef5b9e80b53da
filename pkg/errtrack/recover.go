// recover.go provides the Recover helper for panic capture in subsystem
// goroutines. Use this in scanner workers, GUI callbacks, or plugin hosts.

package errtrack

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Recover captures a panic, records it as a critical error, and returns the
// recovered value. Recover does NOT re-panic after recording.
//
// Use in defer:
//
//	func (w *scanWorker) run(ctx context.Context) {
//	    defer errtrack.Recover(ctx, tracker)
//	    // code that might panic
//	}
//
// Or to capture the recovered value:
//
//	func (w *scanWorker) run(ctx context.Context) (err error) {
//	    defer func() {
//	        if r := errtrack.Recover(ctx, tracker); r != nil {
//	            err = fmt.Errorf("panic: %v", r)
//	        }
//	    }()
//	    // code that might panic
//	}
func Recover(ctx context.Context, t *Tracker) any {
	r := recover()
	if r == nil {
		return nil
	}

	opts := []TrackOption{
		WithCategory(CategorySystem),
		WithSeverity(SeverityCritical),
		withStack(string(debug.Stack())),
		withSite(capturePanicSite()),
	}

	// Tag the record with the reporting component if the goroutine carries one.
	if component, ok := ComponentFromContext(ctx); ok {
		opts = append(opts, WithContext(map[string]any{"component": component}))
	}

	t.track(1, "panic: "+formatRecovered(r), opts)

	return r
}

// formatRecovered formats a recovered panic value as a string.
func formatRecovered(recovered any) string {
	if recovered == nil {
		return "<nil>"
	}
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", recovered)
}
