// Package ordering arranges a course's lectures and PDFs into one timeline.
//
// Two strategies implement Strategy. OracleStrategy asks an LLM for an
// interleaved order, informed by a text digest of the archive's HTML pages,
// and repairs the answer with Normalize so every lecture appears exactly once.
// FallbackStrategy needs no network: all lectures in order, then one item per
// non-lecture-notes PDF. Select picks the strategy from configuration and
// Orderer degrades from the oracle to the fallback on any oracle failure.
package ordering
