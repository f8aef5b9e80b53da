// callsite.go captures the call site of the subsystem reporting an error.

package errtrack

import (
	"path/filepath"
	"runtime"
	"strings"
)

// callSite identifies where Track was invoked from.
type callSite struct {
	Module   string
	Function string
	Line     int
}

// unknownCallSite is the fallback when introspection fails. A record with
// placeholder location is better than no record.
var unknownCallSite = callSite{Module: "unknown", Function: "unknown", Line: 0}

// captureCallSite walks skip frames up the stack and returns the caller's
// file base name, bare function name, and line number.
func captureCallSite(skip int) callSite {
	pc := make([]uintptr, 1)
	// +2 skips runtime.Callers and captureCallSite itself.
	if runtime.Callers(skip+2, pc) == 0 {
		return unknownCallSite
	}

	frame, _ := runtime.CallersFrames(pc).Next()
	if frame.PC == 0 {
		return unknownCallSite
	}

	site := unknownCallSite
	if frame.File != "" {
		site.Module = filepath.Base(frame.File)
	}
	if frame.Function != "" {
		site.Function = bareFunction(frame.Function)
	}
	site.Line = frame.Line
	return site
}

// selfPrefix matches this package's own functions in stack frames.
const selfPrefix = "github.com/lanwarden/errtrack/pkg/errtrack."

// capturePanicSite walks the stack during panic recovery and returns the
// first frame outside the runtime and this package. Frame depths during a
// panic depend on the runtime, so counting frames is not reliable there.
func capturePanicSite() callSite {
	pc := make([]uintptr, 32)
	n := runtime.Callers(2, pc)
	if n == 0 {
		return unknownCallSite
	}

	frames := runtime.CallersFrames(pc[:n])
	for {
		frame, more := frames.Next()
		name := frame.Function
		if name != "" && !strings.HasPrefix(name, "runtime.") && !strings.HasPrefix(name, selfPrefix) {
			site := unknownCallSite
			if frame.File != "" {
				site.Module = filepath.Base(frame.File)
			}
			site.Function = bareFunction(name)
			site.Line = frame.Line
			return site
		}
		if !more {
			return unknownCallSite
		}
	}
}

// bareFunction strips the package path from a fully qualified function name,
// e.g. "github.com/lanwarden/scanner.(*Sweeper).Run" becomes "(*Sweeper).Run".
func bareFunction(qualified string) string {
	if idx := strings.LastIndex(qualified, "/"); idx >= 0 {
		qualified = qualified[idx+1:]
	}
	if idx := strings.Index(qualified, "."); idx >= 0 {
		return qualified[idx+1:]
	}
	return qualified
}
