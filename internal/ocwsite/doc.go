// Package ocwsite fetches pages and archives from the course-archive host.
//
// Requests carry the configured User-Agent and have no client timeout; the
// caller's context bounds them. Non-2xx responses surface as *StatusError so
// callers can distinguish "page missing" from transport failure.
package ocwsite
