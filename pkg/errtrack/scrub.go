// scrub.go implements sensitive data redaction for error records.
// Error messages from firewall and scan subsystems routinely quote raw
// command lines, which can carry credentials.

package errtrack

import (
	"regexp"
	"strings"
)

// ScrubberConfig controls scrubbing behavior.
type ScrubberConfig struct {
	// SensitiveKeys contains additional context keys to redact, matched as
	// case-insensitive substrings.
	SensitiveKeys []string

	// MaxMessageSize is the maximum length for messages (default: 4096).
	MaxMessageSize int

	// MaxStackTraceSize is the maximum length for stack traces (default: 32768).
	MaxStackTraceSize int

	// MaxContextValueSize is the maximum size per context value (default: 1024).
	MaxContextValueSize int
}

// DefaultScrubberConfig returns production-safe defaults.
func DefaultScrubberConfig() ScrubberConfig {
	return ScrubberConfig{
		MaxMessageSize:      4096,
		MaxStackTraceSize:   32768,
		MaxContextValueSize: 1024,
	}
}

// Compiled patterns for message scrubbing (compiled once at package init).
var messageScrubPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|token)[=:\s]+['"]?[\w\-\.]+['"]?`),
	regexp.MustCompile(`(?i)password[=:\s]+['"]?[^\s'",]+['"]?`),
	regexp.MustCompile(`(?i)passwd[=:\s]+['"]?[^\s'",]+['"]?`),
	regexp.MustCompile(`(?i)secret[=:\s]+['"]?[^\s'",]+['"]?`),
	regexp.MustCompile(`(?i)credential[=:\s]+['"]?[^\s'",]+['"]?`),
	// SNMP community strings leak through scanner command lines.
	regexp.MustCompile(`(?i)community[=:\s]+['"]?[^\s'",]+['"]?`),
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`), // Email
}

// Sensitive context key patterns (case-insensitive substring match).
var sensitiveKeyPatterns = []string{
	"token",
	"key",
	"secret",
	"password",
	"credential",
	"auth",
	"passwd",
	"community",
}

// Path patterns to normalize in stack traces.
var pathNormalizationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/home/[^/]+/`),
	regexp.MustCompile(`/Users/[^/]+/`),
	regexp.MustCompile(`C:\\Users\\[^\\]+\\`),
}

var memAddrScrubPattern = regexp.MustCompile(`0x[0-9a-fA-F]+`)

// Scrubber redacts sensitive data from error records before they reach
// any sink or the in-memory history.
type Scrubber struct {
	cfg           ScrubberConfig
	sensitiveKeys []string
}

// NewScrubber creates a new scrubber with the given configuration.
func NewScrubber(cfg ScrubberConfig) *Scrubber {
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}
	if cfg.MaxStackTraceSize <= 0 {
		cfg.MaxStackTraceSize = 32768
	}
	if cfg.MaxContextValueSize <= 0 {
		cfg.MaxContextValueSize = 1024
	}
	keys := append([]string{}, sensitiveKeyPatterns...)
	keys = append(keys, cfg.SensitiveKeys...)
	return &Scrubber{cfg: cfg, sensitiveKeys: keys}
}

// ScrubMessage scrubs sensitive patterns from a message and bounds its size.
func (s *Scrubber) ScrubMessage(msg string) string {
	if msg == "" {
		return msg
	}
	if len(msg) > s.cfg.MaxMessageSize {
		msg = truncateWithMarker(msg, s.cfg.MaxMessageSize)
	}
	for _, pattern := range messageScrubPatterns {
		msg = pattern.ReplaceAllString(msg, "[REDACTED]")
	}
	return msg
}

// ScrubContext redacts sensitive keys and bounds value sizes.
func (s *Scrubber) ScrubContext(ctx map[string]string) map[string]string {
	if ctx == nil {
		return nil
	}
	result := make(map[string]string, len(ctx))
	for key, value := range ctx {
		if s.isSensitiveKey(key) {
			result[key] = "[REDACTED]"
			continue
		}
		if len(value) > s.cfg.MaxContextValueSize {
			value = truncateWithMarker(value, s.cfg.MaxContextValueSize)
		}
		result[key] = value
	}
	return result
}

// ScrubStackTrace normalizes paths and memory addresses and limits size.
func (s *Scrubber) ScrubStackTrace(trace string) string {
	if trace == "" {
		return trace
	}
	for _, pattern := range pathNormalizationPatterns {
		trace = pattern.ReplaceAllString(trace, "/[PATH]/")
	}
	trace = memAddrScrubPattern.ReplaceAllString(trace, "0x...")
	if len(trace) > s.cfg.MaxStackTraceSize {
		trace = truncateWithMarker(trace, s.cfg.MaxStackTraceSize)
	}
	return trace
}

// isSensitiveKey checks if a context key matches sensitive patterns.
func (s *Scrubber) isSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range s.sensitiveKeys {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// truncateWithMarker truncates a string and adds a truncation marker.
func truncateWithMarker(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	marker := "...[TRUNCATED]"
	if maxLen <= len(marker) {
		return marker[:maxLen]
	}
	return s[:maxLen-len(marker)] + marker
}
