// Package logging assembles structured slog loggers used across Roster.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so request handlers can tag log lines
// with request IDs. A no-op logger is provided for tests and wiring code that
// cannot fail.
package logging
