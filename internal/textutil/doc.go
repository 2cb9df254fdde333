// Package textutil converts human titles into filesystem-safe names.
//
// Titles are folded to ASCII (accents stripped through golang.org/x/text),
// lower-cased, and reduced to letters, digits, and dashes. Collisions are
// resolved by the caller through Deduper so a batch of titles always maps to
// distinct filenames in a stable order.
package textutil
