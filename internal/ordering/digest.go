package ordering

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"ocwsync/internal/fileutil"
)

const (
	maxPageChars     = 15000
	maxDigestChars   = 80000
	minPageChars     = 20
	truncationMarker = "\n[... truncated]"
	navHeading       = "=== COURSE NAVIGATION ==="
)

var (
	pagePriority    = []string{"calendar", "syllabus", "assignments", "resource-index", "readings", "schedule"}
	navSelector     = "nav a, .course-nav a, #course-nav a, [role=navigation] a"
	boilerplate     = "script, style, nav, header, footer, .course-nav, #course-nav, noscript, link, meta"
	contentSelector = []string{"main", "article", "#course-content", ".course-content", "#main-content", ".main-content"}
)

// BuildDigest renders the archive's pages/ HTML as labeled plain text for
// the ordering oracle. It returns "" when the archive has no pages.
func BuildDigest(contentRoot string) (string, error) {
	pagesDir := filepath.Join(contentRoot, "pages")
	if _, err := os.Stat(pagesDir); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	files, err := fileutil.FindFiles(pagesDir, func(path string) bool {
		return strings.HasSuffix(path, ".html")
	})
	if err != nil {
		return "", fmt.Errorf("walk pages: %w", err)
	}
	if len(files) == 0 {
		return "", nil
	}
	sort.SliceStable(files, func(i, j int) bool {
		pi, pj := pageRank(pagesDir, files[i]), pageRank(pagesDir, files[j])
		if pi != pj {
			return pi < pj
		}
		return files[i] < files[j]
	})

	nav := navigationContext(filepath.Join(contentRoot, "index.html"))

	var sections []string
	total := 0
	for _, file := range files {
		if total >= maxDigestChars {
			break
		}
		text, err := pageText(file)
		if err != nil || len(text) < minPageChars {
			continue
		}
		section := "=== " + pageLabel(pagesDir, file) + " ===\n" + text
		if len(section) > maxPageChars {
			section = truncateUTF8(section, maxPageChars) + truncationMarker
		}
		sections = append(sections, section)
		total += len(section)
	}
	return nav + strings.Join(sections, "\n\n"), nil
}

func pageRank(pagesDir, path string) int {
	rel, err := filepath.Rel(pagesDir, path)
	if err != nil {
		rel = path
	}
	lower := strings.ToLower(rel)
	for i, keyword := range pagePriority {
		if strings.Contains(lower, keyword) {
			return i
		}
	}
	return len(pagePriority)
}

func pageLabel(pagesDir, file string) string {
	rel, err := filepath.Rel(pagesDir, file)
	if err != nil {
		rel = filepath.Base(file)
	}
	rel = strings.TrimSuffix(filepath.ToSlash(rel), ".html")
	return strings.ToUpper(strings.ReplaceAll(rel, "/", " > "))
}

func navigationContext(indexPath string) string {
	doc, err := loadDocument(indexPath)
	if err != nil {
		return ""
	}
	var links []string
	doc.Find(navSelector).Each(func(_ int, a *goquery.Selection) {
		if text := strings.TrimSpace(a.Text()); text != "" {
			links = append(links, text)
		}
	})
	if len(links) == 0 {
		return ""
	}
	return navHeading + "\n" + strings.Join(links, "\n") + "\n\n"
}

func pageText(path string) (string, error) {
	doc, err := loadDocument(path)
	if err != nil {
		return "", err
	}
	doc.Find(boilerplate).Remove()

	var raw string
	for _, selector := range contentSelector {
		if sel := doc.Find(selector); sel.Length() > 0 {
			raw = sel.Text()
			break
		}
	}
	if raw == "" {
		raw = doc.Find("body").Text()
	}
	return collapseLines(raw), nil
}

func collapseLines(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func loadDocument(path string) (*goquery.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(data))
}
