// Package classify renames and classifies the PDFs of an extracted course
// archive.
//
// Human titles come from the archive's resources/**/data.json records. Each
// PDF under static_resources/ is copied into the course content directory
// under a slug of its title, and typed by an ordered rule table evaluated on
// the original filename first and the title second. Page counts are read with
// pdfcpu; unreadable PDFs are still copied.
package classify
