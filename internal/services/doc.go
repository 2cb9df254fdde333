// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp course slugs, stage names, and run
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that separate fatal run
//     failures from per-item skips.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the download and problem pipelines.
package services
