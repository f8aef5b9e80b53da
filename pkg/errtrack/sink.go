// sink.go defines the Sink interface for durable record destinations.

package errtrack

import "context"

// Sink is the destination for error records.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Write persists an error record. Called after the in-memory
	// aggregates have already been updated.
	Write(ctx context.Context, rec Record) error

	// Flush ensures any buffered records are persisted.
	// For synchronous sinks, this may be a no-op.
	Flush(ctx context.Context) error

	// Close releases resources held by the sink.
	// After Close is called, Write and Flush should return errors.
	Close() error
}
