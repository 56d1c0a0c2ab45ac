// Package logging assembles the structured slog loggers used across the
// conversion pipeline.
//
// It owns the console and JSON handlers, centralizes level parsing, and
// exposes attr helpers so stage code emits log lines with a consistent shape.
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging
