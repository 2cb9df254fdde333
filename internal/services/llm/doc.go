// Package llm provides an OpenRouter chat client used as the ordering and
// problem extraction oracle.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send an optional system prompt and a user prompt, receive
// the raw text content.
// Client.HealthCheck: verify API key and model availability.
// DecodeLLMJSON: decode a JSON object or array, stripping code fences.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty content, and network
// timeouts with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). Context cancellation aborts retries immediately.
//
// # Circuit Breaker
//
// Three consecutive failed completions open a breaker for one minute. While
// open, calls fail fast with ErrUnavailable so callers degrade to their
// deterministic fallbacks instead of waiting on a dead endpoint.
package llm
