// sysinfo.go captures process state for the summary log.

package errtrack

import (
	"os"
	"runtime"
	"time"
)

// ProcessState is the point-in-time process snapshot the summary log's
// footer is rendered from. All fields are best-effort.
type ProcessState struct {
	MemoryBytes    int64  // current heap allocation
	GoroutineCount int    // active goroutines
	UptimeMs       int64  // elapsed since startTime, clamped to >= 0
	HostName       string // empty when the OS refuses to say
}

// CaptureProcessState samples the running process. startTime anchors the
// uptime and normally comes from sink construction.
func CaptureProcessState(startTime time.Time) *ProcessState {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hostname, _ := os.Hostname()

	uptimeMs := time.Since(startTime).Milliseconds()
	if uptimeMs < 0 {
		uptimeMs = 0
	}

	return &ProcessState{
		MemoryBytes:    int64(memStats.Alloc),
		GoroutineCount: runtime.NumGoroutine(),
		UptimeMs:       uptimeMs,
		HostName:       hostname,
	}
}
