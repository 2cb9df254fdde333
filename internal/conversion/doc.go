// Package conversion turns PDFs into markdown text for problem extraction.
//
// Client talks to the LlamaParse v2 API: every upload first waits on a
// shared sliding-window limiter, then the job is polled until it completes,
// fails, or the per-document deadline passes. LocalConverter extracts plain
// text in-process with ledongthuc/pdf and serves as the fallback when no API
// key is configured.
package conversion
