package lectures

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"ocwsync/internal/config"
	"ocwsync/internal/content"
	"ocwsync/internal/logging"
	"ocwsync/internal/ocwsite"
	"ocwsync/internal/store"
)

// Source names where a lecture list came from.
type Source string

const (
	SourceCache   Source = "cache"
	SourceGallery Source = "gallery"
	SourceArchive Source = "archive_scan"
)

// Result is the outcome of Discover.
type Result struct {
	Lectures []content.LectureCandidate
	Source   Source
}

// Discoverer builds the lecture list of a course.
type Discoverer struct {
	cfg     *config.Config
	site    *ocwsite.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewDiscoverer builds a Discoverer. Resource page requests are spaced by
// source.lecture_delay_ms.
func NewDiscoverer(cfg *config.Config, site *ocwsite.Client, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = logging.NewNop()
	}
	limit := rate.Inf
	if delay := time.Duration(cfg.Source.LectureDelayMillis) * time.Millisecond; delay > 0 {
		limit = rate.Every(delay)
	}
	return &Discoverer{
		cfg:     cfg,
		site:    site,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logging.NewComponentLogger(logger, "lectures"),
	}
}

// Discover returns the ordered lectures of course. With refresh set the
// cache is ignored and overwritten. A rediscovery that finds no lectures
// removes the cache.
func (d *Discoverer) Discover(ctx context.Context, course *store.Course, slug, contentRoot string, refresh bool) (Result, error) {
	cachePath := d.cfg.LectureCachePath(slug)
	if !refresh {
		cached, ok, err := LoadCache(cachePath)
		switch {
		case err != nil:
			logging.WarnWithContext(d.logger, "lecture cache unreadable", "lecture_cache_invalid",
				logging.String("path", cachePath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete the cache file or rerun with --refresh-lectures"),
				logging.String(logging.FieldImpact, "lectures are rediscovered from the network"),
			)
		case ok:
			d.logger.Info("lecture cache hit",
				logging.String("path", cachePath),
				logging.Int("lectures", len(cached)),
			)
			return Result{Lectures: cached, Source: SourceCache}, nil
		}
	}

	base := ocwsite.CourseBase(course.URL)
	galleryURL := base + d.cfg.Source.GalleryPath
	result, err := d.fromGallery(ctx, base, galleryURL)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		d.logger.Info("video gallery unavailable; scanning archive html",
			logging.String("gallery_url", galleryURL),
			logging.Error(err),
			logging.String(logging.FieldDecisionType, "lecture_source"),
		)
		lectures, scanErr := ScanArchive(contentRoot)
		if scanErr != nil {
			logging.WarnWithContext(d.logger, "archive html scan failed", "lecture_scan_failed",
				logging.Error(scanErr),
				logging.String(logging.FieldImpact, "course is built without lecture videos"),
			)
		}
		result = Result{Lectures: lectures, Source: SourceArchive}
	}

	d.logger.Info("lectures discovered",
		logging.String("source", string(result.Source)),
		logging.Int("lectures", len(result.Lectures)),
	)
	if len(result.Lectures) == 0 {
		d.dropCache(cachePath)
		return result, nil
	}
	if err := SaveCache(cachePath, result.Lectures); err != nil {
		logging.WarnWithContext(d.logger, "failed to write lecture cache", "lecture_cache_write_failed",
			logging.String("path", cachePath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "next run will query the network again"),
		)
	}
	return result, nil
}

// dropCache removes a cache that rediscovery could not replace, so a later
// run does not serve the old list.
func (d *Discoverer) dropCache(cachePath string) {
	removed, err := RemoveCache(cachePath)
	if err != nil {
		logging.WarnWithContext(d.logger, "stale lecture cache kept", "lecture_cache_remove_failed",
			logging.String("path", cachePath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the cache file by hand"),
			logging.String(logging.FieldImpact, "next run without --refresh-lectures serves the old lecture list"),
		)
		return
	}
	if removed {
		d.logger.Info("stale lecture cache removed",
			logging.String("path", cachePath),
			logging.String(logging.FieldDecisionType, "lecture_cache"),
		)
	}
}

func (d *Discoverer) fromGallery(ctx context.Context, base, galleryURL string) (Result, error) {
	doc, _, err := d.site.Document(ctx, galleryURL)
	if err != nil {
		return Result{}, err
	}
	lectures := ParseGallery(doc)
	d.logger.Debug("video gallery parsed", logging.Int("lectures", len(lectures)))

	for i := range lectures {
		lecture := &lectures[i]
		if lecture.VideoID == nil {
			continue
		}
		if err := d.limiter.Wait(ctx); err != nil {
			return Result{}, err
		}
		resourceURL := base + "resources/" + lecture.Slug + "/"
		page, err := d.site.Page(ctx, resourceURL)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			d.logger.Debug("lecture resource page unavailable",
				logging.String("url", resourceURL),
				logging.Error(err),
			)
			continue
		}
		if archive, ok := ArchiveURL(page); ok {
			lecture.ArchiveURL = &archive
		}
	}
	return Result{Lectures: lectures, Source: SourceGallery}, nil
}
