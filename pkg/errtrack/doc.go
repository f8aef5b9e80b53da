// Package errtrack provides lightweight, shared error tracking for the
// LANWarden suite.
//
// errtrack lets independently running subsystems (network scanners, firewall
// controllers, plugin loaders, GUI components, persistence layers) report
// failures through one call without blocking on disk I/O, while the process
// keeps running aggregates and a bounded history of recent failures for
// diagnostics.
//
// # Core Components
//
// The library is organized around these concepts:
//
//   - Record: The canonical error representation with category, severity, call site, and context
//   - Tracker: Central facade that classifies, aggregates, and hands records to a sink
//   - Sink: Destination for records (log directory, sqlite, prometheus, stderr, multi, noop)
//   - Classifier: Ordered keyword rules that categorize unclassified messages
//   - Scrubber: Redacts credentials and PII before persistence
//
// # Quick Start
//
// For isolated, testable instances:
//
//	sink, err := errtrack.NewLogDirSink("error_logs")
//	if err != nil {
//	    // degrade: the tracker still aggregates in memory
//	}
//	tracker := errtrack.New(errtrack.WithSink(errtrack.NewAsyncSink(sink)))
//	defer tracker.Close()
//
//	tracker.Track("Network scan failed: timeout",
//	    errtrack.WithCategory(errtrack.CategoryNetworkScan),
//	    errtrack.WithSeverity(errtrack.SeverityLow),
//	)
//
// For process-wide convenience:
//
//	errtrack.Track("firewall rule rejected", errtrack.WithError(err))
//	stats := errtrack.GetStats()
//	defer errtrack.Shutdown(context.Background())
//
// # Design Principles
//
//   - Track never fails the caller: all internal faults degrade to a stderr notice
//   - Producers never wait on disk: aggregation is synchronous, persistence is queued
//   - Under overload the queue drops oldest records and counts the drops; the
//     in-memory statistics stay exact
//   - Zero-dependency core: external dependencies only in sink packages
package errtrack
