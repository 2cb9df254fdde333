// Package testsupport provides fixtures shared by package tests: temp-dir
// configs, opened stores, seeded courses, archive trees, and tiny PDFs.
package testsupport
