// Package builder turns an ordered timeline into persisted sections and
// resources.
//
// Plan is pure: each ordered item becomes one section, lecture items carry a
// video resource plus the lecture notes matched by lecture number, and other
// items carry one resource per PDF. Build hands the plan to the store, which
// replaces the course's previous content in a single transaction.
package builder
