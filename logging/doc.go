// Package logging provides a minimal logging interface and adapters.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the runner, flows, tools and stores use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - New, which builds a JSON or text slog handler from Config
//   - NoOpLogger for silent operation (testing, library defaults)
//
// Usage:
//
//	logger := logging.New(&logging.Config{Level: logging.LogLevelDebug, Format: "json", Output: os.Stderr})
//	logger.Info("router.decision", "route", "expense")
package logging
