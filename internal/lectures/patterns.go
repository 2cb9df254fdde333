package lectures

import (
	"regexp"
	"strconv"
)

var (
	thumbnailPattern     = regexp.MustCompile(`img\.youtube\.com/vi/([a-zA-Z0-9_-]{11})`)
	archiveURLPattern    = regexp.MustCompile(`https?://archive\.org/download/[^\s"'<>]+\.mp4`)
	lectureNumberPattern = regexp.MustCompile(`(?i)lecture\s+(\d+)`)
	embedPatterns        = []*regexp.Regexp{
		regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	}
)

// ThumbnailVideoID extracts the video id from a thumbnail image URL.
func ThumbnailVideoID(src string) (string, bool) {
	m := thumbnailPattern.FindStringSubmatch(src)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// EmbedVideoID extracts the video id from an embedded player or watch URL.
func EmbedVideoID(src string) (string, bool) {
	for _, pattern := range embedPatterns {
		if m := pattern.FindStringSubmatch(src); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ArchiveURL returns the first archival .mp4 link in html.
func ArchiveURL(html []byte) (string, bool) {
	m := archiveURLPattern.Find(html)
	if m == nil {
		return "", false
	}
	return string(m), true
}

// LectureNumber parses "Lecture <N>" out of a title.
func LectureNumber(title string) *int {
	m := lectureNumberPattern.FindStringSubmatch(title)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}
