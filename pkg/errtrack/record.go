// record.go defines the canonical error record data structure for errtrack.

package errtrack

import (
	"fmt"
	"strings"
	"time"
)

// Category identifies which subsystem an error belongs to.
// The set is closed so that aggregation keys stay bounded; callers cannot
// supply free-form category strings.
type Category string

const (
	// CategorySystem covers OS-level and resource errors.
	CategorySystem Category = "SYSTEM"

	// CategoryTopology covers network topology discovery errors.
	CategoryTopology Category = "TOPOLOGY"

	// CategoryUDPFlood covers UDP flood detection and mitigation errors.
	CategoryUDPFlood Category = "UDP_FLOOD"

	// CategoryNetworkScan covers device and port scanning errors.
	CategoryNetworkScan Category = "NETWORK_SCAN"

	// CategoryGUI covers UI toolkit errors.
	CategoryGUI Category = "GUI"

	// CategoryFirewall covers firewall rule and blocking errors.
	CategoryFirewall Category = "FIREWALL"

	// CategoryPlugin covers plugin loading and execution errors.
	CategoryPlugin Category = "PLUGIN"

	// CategoryDataPersistence covers save/load and disk errors.
	CategoryDataPersistence Category = "DATA_PERSISTENCE"

	// CategoryUnknown is the fallback when no classification rule matches.
	CategoryUnknown Category = "UNKNOWN"
)

// Categories returns every known category. The order is stable.
func Categories() []Category {
	return []Category{
		CategorySystem,
		CategoryTopology,
		CategoryUDPFlood,
		CategoryNetworkScan,
		CategoryGUI,
		CategoryFirewall,
		CategoryPlugin,
		CategoryDataPersistence,
		CategoryUnknown,
	}
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// LogName returns the deterministic file name of the per-category log.
func (c Category) LogName() string {
	return "category_" + strings.ToLower(string(c)) + ".log"
}

// Severity is the ordered severity level of an error record.
// Only SeverityCritical is routed to the critical log.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// Severities returns every severity level in ascending order.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// String returns the upper-case name of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("SEVERITY(%d)", int(s))
	}
}

// MarshalText encodes the severity as its upper-case name so persisted
// records stay readable without the Go enum values. Implementing the text
// interfaces (rather than the JSON ones) also covers severities used as
// map keys, as in Stats.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name. Unknown names are an error.
func (s *Severity) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "LOW":
		*s = SeverityLow
	case "MEDIUM":
		*s = SeverityMedium
	case "HIGH":
		*s = SeverityHigh
	case "CRITICAL":
		*s = SeverityCritical
	default:
		return fmt.Errorf("unknown severity %q", string(text))
	}
	return nil
}

// Record is one structured description of a single reported failure.
// Records are immutable once built; the tracker hands out copies.
type Record struct {
	// Identity fields

	// RecordID is a unique identifier for this record (UUID).
	RecordID string `json:"record_id"`

	// SessionID identifies the running tracker instance that built the record.
	SessionID string `json:"session_id"`

	// Timestamp is when the record was built, in the caller's goroutine.
	Timestamp time.Time `json:"timestamp"`

	// Fingerprint is a stable hash for grouping similar records.
	Fingerprint string `json:"fingerprint"`

	// Error details

	// Message is the caller-supplied error message.
	Message string `json:"error_message"`

	// ExceptionType is the Go type of the supplied error, if any.
	ExceptionType string `json:"exception_type,omitempty"`

	// ExceptionMessage is the Error() text of the supplied error, if any.
	ExceptionMessage string `json:"exception_message,omitempty"`

	// StackTrace is populated only for recovered panics.
	StackTrace string `json:"stack_trace,omitempty"`

	// Classification

	Category Category `json:"category"`
	Severity Severity `json:"severity"`

	// Context is caller-supplied key/value data, coerced to strings.
	// The tracker treats it as opaque.
	Context map[string]string `json:"context,omitempty"`

	// Call site, captured at the moment Track was invoked.

	// Module is the base name of the caller's source file.
	Module string `json:"module"`

	// Function is the caller's function name, without the package path.
	Function string `json:"function"`

	// Line is the caller's line number.
	Line int `json:"line_number"`
}
