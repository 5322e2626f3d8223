// Package logger constructs the application-wide structured logger on top
// of log/slog: JSON output in prod, human-readable text elsewhere, with a
// configurable level.
package logger
