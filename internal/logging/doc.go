// Package logging assembles structured slog loggers and formatting helpers used
// across ocwsync.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so stage code can tag log lines with the
// course slug, stage, and run id. Each invocation writes its own log file,
// pruned after the configured retention period.
package logging
