// Package fileutil holds small filesystem helpers: streaming copies, atomic
// writes, and guarded zip extraction.
package fileutil
