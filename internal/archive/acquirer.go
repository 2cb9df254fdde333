package archive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ocwsync/internal/config"
	"ocwsync/internal/fileutil"
	"ocwsync/internal/logging"
	"ocwsync/internal/ocwsite"
	"ocwsync/internal/services"
	"ocwsync/internal/store"
)

const stageName = "acquire"

// CourseFinder is the store subset used to resolve slugs.
type CourseFinder interface {
	FindCoursesBySlug(ctx context.Context, slug string) ([]store.Course, error)
}

// Archive describes an extracted course archive in scratch space.
type Archive struct {
	Slug        string
	ZipURL      string
	ZipPath     string
	ExtractDir  string
	ContentRoot string
	Bytes       int64
	Files       int
}

// Acquirer resolves courses and downloads their archives.
type Acquirer struct {
	cfg    *config.Config
	finder CourseFinder
	site   *ocwsite.Client
	logger *slog.Logger
}

// NewAcquirer builds an Acquirer.
func NewAcquirer(cfg *config.Config, finder CourseFinder, site *ocwsite.Client, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Acquirer{
		cfg:    cfg,
		finder: finder,
		site:   site,
		logger: logging.NewComponentLogger(logger, "archive"),
	}
}

// FindCourse returns the catalog course whose URL contains slug. When several
// match, the lowest id wins.
func (a *Acquirer) FindCourse(ctx context.Context, slug string) (*store.Course, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, services.Wrap(services.ErrValidation, stageName, "find course", "course slug is required", nil)
	}
	courses, err := a.finder.FindCoursesBySlug(ctx, slug)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, stageName, "find course", "catalog lookup failed", err)
	}
	if len(courses) == 0 {
		return nil, services.Wrap(services.ErrNotFound, stageName, "find course", fmt.Sprintf("no catalog course matches %q", slug), nil)
	}
	course := courses[0]
	if len(courses) > 1 {
		logging.WarnWithContext(a.logger, "multiple catalog courses match slug", "course_match_ambiguous",
			logging.String(logging.FieldCourse, slug),
			logging.Int("matches", len(courses)),
			logging.Int64("course_id", course.ID),
			logging.String(logging.FieldErrorHint, "use a more specific slug"),
			logging.String(logging.FieldImpact, "the lowest course id is used"),
		)
	}
	a.logger.Info("course resolved",
		logging.String(logging.FieldCourse, slug),
		logging.Int64("course_id", course.ID),
		logging.String("title", course.Title),
		logging.String("url", course.URL),
	)
	return &course, nil
}

// Acquire downloads and extracts the archive of course into scratch space.
func (a *Acquirer) Acquire(ctx context.Context, course *store.Course, slug string) (*Archive, error) {
	base := ocwsite.CourseBase(course.URL)
	pageURL := base + a.cfg.Source.DownloadPath
	zipURL, err := a.findZipURL(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	scratch := a.cfg.Paths.ScratchDir
	zipPath := filepath.Join(scratch, slug+".zip")
	extractDir := filepath.Join(scratch, slug)
	a.logger.Info("downloading course archive",
		logging.String("zip_url", zipURL),
		logging.String("zip_path", zipPath),
	)
	size, err := a.site.Download(ctx, zipURL, zipPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, stageName, "download archive", zipURL, err)
	}

	if err := os.RemoveAll(extractDir); err != nil {
		return nil, services.Wrap(services.ErrExternalService, stageName, "extract archive", "clear previous extraction", err)
	}
	files, err := fileutil.ExtractZip(zipPath, extractDir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "extract archive", zipPath, err)
	}
	root, err := fileutil.ContentRoot(extractDir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "extract archive", "locate content root", err)
	}

	a.logger.Info("course archive extracted",
		logging.Int64("bytes", size),
		logging.Int("files", files),
		logging.String("content_root", root),
	)
	return &Archive{
		Slug:        slug,
		ZipURL:      zipURL,
		ZipPath:     zipPath,
		ExtractDir:  extractDir,
		ContentRoot: root,
		Bytes:       size,
		Files:       files,
	}, nil
}

func (a *Acquirer) findZipURL(ctx context.Context, pageURL string) (string, error) {
	doc, _, err := a.site.Document(ctx, pageURL)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, stageName, "fetch download page", pageURL, err)
	}
	var href string
	doc.Find(`a[href$=".zip"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		value, ok := sel.Attr("href")
		if ok && strings.TrimSpace(value) != "" {
			href = value
			return false
		}
		return true
	})
	if href == "" {
		return "", services.Wrap(services.ErrExternalService, stageName, "find archive link", "download page has no zip link: "+pageURL, nil)
	}
	resolved, err := ocwsite.Resolve(pageURL, href)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, stageName, "find archive link", href, err)
	}
	return resolved, nil
}

// Cleanup removes the archive and its extraction directory.
func Cleanup(arc *Archive) error {
	if arc == nil {
		return nil
	}
	var firstErr error
	for _, path := range []string{arc.ZipPath, arc.ExtractDir} {
		if path == "" {
			continue
		}
		if err := os.RemoveAll(path); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
