// Package logger builds the application's slog loggers: JSON output to
// stdout, per-call context attribute extraction (request IDs, job IDs), and
// an optional Sentry handler fan-out for warnings and errors.
package logger
