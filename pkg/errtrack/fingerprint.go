// fingerprint.go generates stable hashes for grouping similar records.

package errtrack

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// fingerprint generates a hash for grouping similar records.
// The fingerprint is based on:
//   - category, exception type
//   - call site (module and function, but not line number)
//
// It ignores variable data like timestamps, record IDs, messages, and
// context values, so repeated failures from the same site collapse to one
// group. The sqlite sink uses this for occurrence counting.
func fingerprint(rec Record) string {
	parts := []string{
		string(rec.Category),
		rec.ExceptionType,
		rec.Module,
		rec.Function,
	}

	input := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(input))

	// Hex-encoded first 16 bytes (32 hex chars).
	return hex.EncodeToString(hash[:16])
}
