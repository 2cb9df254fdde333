// Package lectures discovers the ordered lecture videos of a course.
//
// Discovery prefers a per-course lectures.json cache. Without one it scrapes
// the live video gallery, then visits each lecture resource page to find an
// archival mirror of the video, spacing those requests with a rate limiter.
// When the gallery is unavailable the extracted archive's HTML is scanned for
// embedded players instead. Non-empty results are written back to the cache.
package lectures
