// Package log provides structured logging setup for wikiharvest.
//
// It builds slog loggers with a handler wrapper that truncates oversized
// string attributes. The pipeline routinely handles full page texts that
// run to hundreds of kilobytes; logging one by accident must not flood
// the output or leak a whole document into a log aggregator.
//
// Usage:
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
