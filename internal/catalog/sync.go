package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ocwsync/internal/config"
	"ocwsync/internal/logging"
	"ocwsync/internal/ratelimit"
	"ocwsync/internal/services"
	"ocwsync/internal/store"
)

const stageName = "catalog"

// Writer is the store subset used by Sync.
type Writer interface {
	UpsertCourses(ctx context.Context, courses []store.Course) error
}

// Result summarizes a sync.
type Result struct {
	Pages    int
	Courses  int
	Reported int
	Batches  int
}

type apiPage struct {
	Count   int         `json:"count"`
	Next    *string     `json:"next"`
	Results []apiCourse `json:"results"`
}

type apiCourse struct {
	ID          int64   `json:"id"`
	ReadableID  string  `json:"readable_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	Image       *struct {
		URL string `json:"url"`
	} `json:"image"`
}

func (c apiCourse) toCourse() store.Course {
	course := store.Course{ID: c.ID, ReadableID: c.ReadableID, Title: c.Title}
	if c.Description != nil {
		course.Description = *c.Description
	}
	if c.URL != nil {
		course.URL = *c.URL
	}
	if c.Image != nil {
		course.ImageURL = c.Image.URL
	}
	return course
}

// Syncer fetches the catalog and stores it.
type Syncer struct {
	cfg    config.Catalog
	http   *http.Client
	writer Writer
	clock  ratelimit.Clock
	logger *slog.Logger
}

// Option customizes a Syncer.
type Option func(*Syncer)

// WithHTTPClient overrides the HTTP client. Its timeout is left as given.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Syncer) {
		if client != nil {
			s.http = client
		}
	}
}

// WithClock overrides the clock used for backoff and page delays.
func WithClock(clock ratelimit.Clock) Option {
	return func(s *Syncer) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New builds a Syncer.
func New(cfg config.Catalog, writer Writer, logger *slog.Logger, opts ...Option) *Syncer {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	s := &Syncer{
		cfg:    cfg,
		http:   &http.Client{Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second},
		writer: writer,
		clock:  ratelimit.SystemClock{},
		logger: logging.NewComponentLogger(logger, "catalog"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync fetches every catalog page and upserts the courses.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	first, err := s.firstPageURL()
	if err != nil {
		return Result{}, err
	}
	upgrade := strings.HasPrefix(first, "https://")

	var (
		result  Result
		courses []store.Course
	)
	for next := first; next != ""; {
		page, err := s.fetchWithRetry(ctx, next, result.Pages+1)
		if err != nil {
			return result, err
		}
		result.Pages++
		result.Reported = page.Count
		for _, c := range page.Results {
			courses = append(courses, c.toCourse())
		}
		s.logger.Info("catalog page fetched",
			logging.Int("page", result.Pages),
			logging.Int("courses", len(page.Results)),
			logging.Int("total", len(courses)),
			logging.Int("reported", page.Count),
		)

		next = ""
		if page.Next != nil {
			next = strings.TrimSpace(*page.Next)
			if upgrade && strings.HasPrefix(next, "http://") {
				next = "https://" + strings.TrimPrefix(next, "http://")
			}
		}
		if next != "" {
			if err := s.clock.Sleep(ctx, time.Duration(s.cfg.PageDelaySeconds)*time.Second); err != nil {
				return result, err
			}
		}
	}
	result.Courses = len(courses)

	for start := 0; start < len(courses); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(courses))
		if err := s.writer.UpsertCourses(ctx, courses[start:end]); err != nil {
			return result, services.Wrap(services.ErrPersistence, stageName, "upsert courses",
				fmt.Sprintf("batch starting at %d", start), err)
		}
		result.Batches++
		s.logger.Debug("catalog batch upserted",
			logging.Int("batch", result.Batches),
			logging.Int("rows", end-start),
		)
	}
	s.logger.Info("catalog sync complete",
		logging.Int("pages", result.Pages),
		logging.Int("courses", result.Courses),
		logging.Int("batches", result.Batches),
	)
	return result, nil
}

func (s *Syncer) firstPageURL() (string, error) {
	u, err := url.Parse(strings.TrimSpace(s.cfg.BaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", services.Wrap(services.ErrConfiguration, stageName, "parse base url", s.cfg.BaseURL, err)
	}
	q := u.Query()
	if q.Get("platform") == "" {
		q.Set("platform", "ocw")
	}
	if s.cfg.PageSize > 0 {
		q.Set("limit", strconv.Itoa(s.cfg.PageSize))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *Syncer) fetchWithRetry(ctx context.Context, pageURL string, pageNum int) (apiPage, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.RetryAttempts; attempt++ {
		page, err := s.fetch(ctx, pageURL)
		if err == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return apiPage{}, ctx.Err()
		}
		lastErr = err
		if attempt == s.cfg.RetryAttempts {
			break
		}
		backoff := time.Duration(s.cfg.RetryBackoffSeconds) * time.Second
		s.logger.Warn("catalog page failed; retrying",
			logging.Int("page", pageNum),
			logging.Int("attempt", attempt),
			logging.Duration("backoff", backoff),
			logging.Error(err),
		)
		if err := s.clock.Sleep(ctx, backoff); err != nil {
			return apiPage{}, err
		}
	}
	return apiPage{}, services.Wrap(services.ErrExternalService, stageName, "fetch page",
		fmt.Sprintf("page %d after %d attempts", pageNum, s.cfg.RetryAttempts), lastErr)
}

func (s *Syncer) fetch(ctx context.Context, pageURL string) (apiPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return apiPage{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.http.Do(req)
	if err != nil {
		return apiPage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apiPage{}, fmt.Errorf("catalog api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	var page apiPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return apiPage{}, fmt.Errorf("decode page: %w", err)
	}
	return page, nil
}
