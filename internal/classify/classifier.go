package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"ocwsync/internal/content"
	"ocwsync/internal/fileutil"
	"ocwsync/internal/logging"
	"ocwsync/internal/services"
	"ocwsync/internal/textutil"
)

const stageName = "classify"

// Result is the outcome of classifying one archive.
type Result struct {
	Entries      []content.PdfEntry
	Renamed      map[string]string
	LectureNotes map[int][]string
}

// PageCounter reports the page count of a PDF file.
type PageCounter func(path string) (int, error)

var disablePdfcpuConfig sync.Once

// PdfcpuPageCount counts pages with pdfcpu without touching its config dir.
func PdfcpuPageCount(path string) (int, error) {
	disablePdfcpuConfig.Do(api.DisableConfigDir)
	return api.PageCountFile(path)
}

// Classifier copies, renames, and types archive PDFs.
type Classifier struct {
	pages  PageCounter
	logger *slog.Logger
}

// New builds a Classifier. A nil counter uses pdfcpu.
func New(pages PageCounter, logger *slog.Logger) *Classifier {
	if pages == nil {
		pages = PdfcpuPageCount
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Classifier{pages: pages, logger: logging.NewComponentLogger(logger, "classify")}
}

// Classify processes static_resources/*.pdf under contentRoot in filename
// order and copies each into destDir under its final name.
func (c *Classifier) Classify(ctx context.Context, contentRoot, destDir string) (*Result, error) {
	titles, err := LoadTitleMap(contentRoot)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "load titles", contentRoot, err)
	}
	c.logger.Info("resource titles loaded", logging.Int("titles", len(titles)))

	staticDir := filepath.Join(contentRoot, "static_resources")
	names, err := listPDFs(staticDir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "list pdfs", staticDir, err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrPersistence, stageName, "create content dir", destDir, err)
	}

	result := &Result{
		Entries:      make([]content.PdfEntry, 0, len(names)),
		Renamed:      make(map[string]string, len(names)),
		LectureNotes: make(map[int][]string),
	}
	dedupe := textutil.NewDeduper()
	for _, original := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		title, titled := titles[original]
		filename := original
		if titled {
			if slug := textutil.TitleToFilename(title); slug != "" {
				filename = slug
			}
		}
		filename = dedupe.Claim(filename)

		dest := filepath.Join(destDir, filename)
		if err := fileutil.CopyFile(filepath.Join(staticDir, original), dest); err != nil {
			return nil, services.Wrap(services.ErrPersistence, stageName, "copy pdf", original, err)
		}

		if !titled {
			title = textutil.FilenameTitle(filename)
		}
		entry := content.PdfEntry{
			Filename:         filename,
			OriginalFilename: original,
			Title:            title,
			Type:             classifyNames(original, title),
		}
		if pages, err := c.pages(dest); err != nil {
			logging.WarnWithContext(c.logger, "pdf could not be validated", "pdf_invalid",
				logging.String("file", filename),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "the archive copy may be truncated or encrypted"),
				logging.String(logging.FieldImpact, "file is kept but problem extraction may fail"),
			)
		} else {
			entry.PageCount = pages
		}
		result.Entries = append(result.Entries, entry)
		result.Renamed[original] = filename
		if n, ok := lectureKey(original); ok {
			result.LectureNotes[n] = append(result.LectureNotes[n], filename)
		}
		if filename != original {
			c.logger.Debug("pdf renamed",
				logging.String("from", original),
				logging.String("to", filename),
				logging.String("title", title),
			)
		}
	}

	c.logger.Info("pdfs classified",
		logging.Int("pdfs", len(result.Entries)),
		logging.Int("lecture_note_groups", len(result.LectureNotes)),
		logging.Any("types", countTypes(result.Entries)),
	)
	return result, nil
}

// classifyNames types a PDF by its original filename, then by its title when
// the filename alone says other.
func classifyNames(original, title string) content.PdfType {
	if t := GuessType(original); t != content.PdfOther {
		return t
	}
	return GuessType(title)
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func countTypes(entries []content.PdfEntry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[string(e.Type)]++
	}
	return counts
}
