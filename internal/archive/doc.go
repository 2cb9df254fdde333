// Package archive locates a course in the catalog and fetches its offline
// archive.
//
// Acquire reads the course download page, follows the first zip link, saves
// the archive under the scratch directory, and extracts it with path
// traversal protection. Every failure here is fatal for the run and is
// wrapped with a services marker.
package archive
