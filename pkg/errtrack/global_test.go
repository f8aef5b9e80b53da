package errtrack

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resetDefault clears the process-wide tracker so each test builds its own.
func resetDefault(t *testing.T) {
	t.Helper()
	SetDefault(nil)
	t.Cleanup(func() { SetDefault(nil) })
}

func TestDefault_WritesToConfiguredLogDir(t *testing.T) {
	resetDefault(t)
	dir := filepath.Join(t.TempDir(), "logs")
	t.Setenv("ERRTRACK_LOG_DIR", dir)

	Track("Network scan failed: timeout", WithSeverity(SeverityHigh))

	if err := Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "errors.log"))
	if err != nil {
		t.Fatalf("read errors.log: %v", err)
	}
	if !strings.Contains(string(data), "Network scan failed: timeout") {
		t.Errorf("errors.log missing the tracked message:\n%s", data)
	}

	stats := GetStats()
	if stats.TotalErrors != 1 {
		t.Errorf("TotalErrors = %d, want 1", stats.TotalErrors)
	}

	recent := GetRecent(1)
	if len(recent) != 1 || recent[0].Category != CategoryNetworkScan {
		t.Errorf("GetRecent(1) = %+v, want one NETWORK_SCAN record", recent)
	}
}

func TestDefault_DegradesWithoutLogDir(t *testing.T) {
	resetDefault(t)

	// A regular file where the log directory should go makes creation fail.
	blocked := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ERRTRACK_LOG_DIR", filepath.Join(blocked, "logs"))

	// Reporting must keep working in memory.
	Track("could not save settings to disk")

	if got := GetStats().TotalErrors; got != 1 {
		t.Errorf("TotalErrors = %d, want 1 when running without a log directory", got)
	}
}

func TestSetDefault(t *testing.T) {
	resetDefault(t)

	sink := &testSink{}
	SetDefault(New(WithSink(sink)))

	Track("firewall rule rejected")

	records := sink.getRecords()
	if len(records) != 1 {
		t.Fatalf("expected 1 record through the replaced default, got %d", len(records))
	}
	if records[0].Module != "global_test.go" {
		t.Errorf("Module = %q, want global_test.go (call site of package-level Track)", records[0].Module)
	}
}

func TestShutdown_NoDefault(t *testing.T) {
	resetDefault(t)
	if err := Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown with no default tracker: %v", err)
	}
}
