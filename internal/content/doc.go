// Package content defines the in-memory types that flow between pipeline
// stages of one course run: discovered lectures, classified PDFs, and the
// ordered items that become persisted sections.
package content
