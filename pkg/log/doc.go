// Package log provides the logging abstraction used by the dataset engine.
//
// Library code never writes to stderr directly. It reports through a Logger,
// which defaults to the no-op implementation; the command line wires in the
// zerolog adapter.
//
//	logger := log.NewZerologAdapter()
//	ds, err := dataset.Open(5, dataset.Options{Logger: logger})
//
// Fields are typed helpers so run and event identifiers are always logged
// under the same keys:
//
//	logger.Warn("event not found", log.Run(run), log.Event(ev))
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package log
