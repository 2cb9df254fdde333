package lectures

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ocwsync/internal/content"
	"ocwsync/internal/fileutil"
)

// ScanArchive finds embedded video players in every HTML file under root.
// Each new video id becomes a lecture titled by the page's first h1, else
// first h2, else "Video <n>", with the file's base name as slug.
func ScanArchive(root string) ([]content.LectureCandidate, error) {
	files, err := fileutil.FindFiles(root, func(path string) bool {
		return strings.HasSuffix(path, ".html")
	})
	if err != nil {
		return nil, fmt.Errorf("walk archive html: %w", err)
	}

	var lectures []content.LectureCandidate
	seen := make(map[string]struct{})
	for _, file := range files {
		html, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
		if err != nil {
			continue
		}
		doc.Find("iframe[src]").Each(func(_ int, iframe *goquery.Selection) {
			id, ok := EmbedVideoID(iframe.AttrOr("src", ""))
			if !ok {
				return
			}
			if _, dup := seen[id]; dup {
				return
			}
			seen[id] = struct{}{}

			title := strings.TrimSpace(doc.Find("h1").First().Text())
			if title == "" {
				title = strings.TrimSpace(doc.Find("h2").First().Text())
			}
			if title == "" {
				title = fmt.Sprintf("Video %d", len(lectures)+1)
			}
			lecture := content.LectureCandidate{
				Title:         title,
				Slug:          strings.TrimSuffix(filepath.Base(file), ".html"),
				VideoID:       &id,
				LectureNumber: LectureNumber(title),
			}
			if archive, ok := ArchiveURL(html); ok {
				lecture.ArchiveURL = &archive
			}
			lectures = append(lectures, lecture)
		})
	}
	return lectures, nil
}
