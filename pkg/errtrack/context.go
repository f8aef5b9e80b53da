// context.go propagates the reporting component's name through
// context.Context, so long-lived worker goroutines can tag the records
// Recover produces on their behalf.

package errtrack

import "context"

// Context key type (unexported to avoid collisions).
type componentKey struct{}

// WithComponent returns a context tagged with a subsystem name, e.g.
// "scanner" or "firewall". Recover copies the tag into the record context.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey{}, component)
}

// ComponentFromContext extracts the component name from context.
// Returns empty string and false if not set or empty.
func ComponentFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(componentKey{})
	name, ok := v.(string)
	return name, ok && name != ""
}
