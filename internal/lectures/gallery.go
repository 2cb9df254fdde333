package lectures

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ocwsync/internal/content"
)

// ParseGallery extracts lectures from a video gallery page. Every anchor
// holding a non-empty h5 heading is a lecture; the thumbnail supplies the
// video id when present. Entries are deduplicated by the last path segment
// of the anchor href.
func ParseGallery(doc *goquery.Document) []content.LectureCandidate {
	var lectures []content.LectureCandidate
	seen := make(map[string]struct{})
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		h5 := a.Find("h5")
		if h5.Length() == 0 {
			return
		}
		title := strings.TrimSpace(h5.First().Text())
		if title == "" {
			return
		}
		slug := hrefSlug(a.AttrOr("href", ""))
		if slug != "" {
			if _, dup := seen[slug]; dup {
				return
			}
			seen[slug] = struct{}{}
		} else {
			slug = fmt.Sprintf("lecture-%d", len(lectures)+1)
		}

		lecture := content.LectureCandidate{
			Title:         title,
			Slug:          slug,
			LectureNumber: LectureNumber(title),
		}
		if id, ok := ThumbnailVideoID(a.Find("img").First().AttrOr("src", "")); ok {
			lecture.VideoID = &id
		}
		lectures = append(lectures, lecture)
	})
	return lectures
}

func hrefSlug(href string) string {
	href = strings.TrimRight(strings.TrimSpace(href), "/")
	if idx := strings.LastIndex(href, "/"); idx >= 0 {
		href = href[idx+1:]
	}
	return href
}
