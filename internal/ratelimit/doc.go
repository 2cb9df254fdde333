// Package ratelimit provides a sliding-window limiter with an injectable clock.
//
// Window counts operations inside a trailing period rather than refilling
// tokens, so a burst that exhausts the quota waits exactly until the oldest
// operation expires. The document-conversion client receives one shared
// Window per run.
package ratelimit
