package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ocwsync/internal/archive"
	"ocwsync/internal/builder"
	"ocwsync/internal/classify"
	"ocwsync/internal/config"
	"ocwsync/internal/conversion"
	"ocwsync/internal/lectures"
	"ocwsync/internal/logging"
	"ocwsync/internal/ocwsite"
	"ocwsync/internal/ordering"
	"ocwsync/internal/problems"
	"ocwsync/internal/ratelimit"
	"ocwsync/internal/runlock"
	"ocwsync/internal/services"
	"ocwsync/internal/services/llm"
	"ocwsync/internal/store"
)

// Store is the persistence surface used by both workflows.
type Store interface {
	archive.CourseFinder
	builder.ContentWriter
	problems.Store
}

// Runner wires the course workflows to their dependencies.
type Runner struct {
	cfg    *config.Config
	store  Store
	site   *ocwsite.Client
	pages  classify.PageCounter
	oracle func(config.LLMConfig) *llm.Client
	runID  func() string
	logger *slog.Logger
}

// Option customizes a Runner.
type Option func(*Runner)

// WithSite overrides the archive host client.
func WithSite(site *ocwsite.Client) Option {
	return func(r *Runner) {
		if site != nil {
			r.site = site
		}
	}
}

// WithPageCounter overrides PDF page counting.
func WithPageCounter(pages classify.PageCounter) Option {
	return func(r *Runner) {
		if pages != nil {
			r.pages = pages
		}
	}
}

// WithRunID pins the run id, so the CLI can name its log file after it.
func WithRunID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.runID = func() string { return id }
		}
	}
}

// NewRunner builds a Runner.
func NewRunner(cfg *config.Config, st Store, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:    cfg,
		store:  st,
		site:   ocwsite.New(ocwsite.Config{UserAgent: cfg.Source.UserAgent}),
		pages:  classify.PdfcpuPageCount,
		oracle: newLLMClient,
		runID:  uuid.NewString,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newLLMClient(cfg config.LLMConfig) *llm.Client {
	return llm.NewClient(llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		Referer:        cfg.Referer,
		Title:          cfg.Title,
		TimeoutSeconds: cfg.TimeoutSeconds,
	})
}

// DownloadOptions tunes a download run.
type DownloadOptions struct {
	KeepScratch     bool
	RefreshLectures bool
}

// DownloadSummary reports a finished download run.
type DownloadSummary struct {
	RunID         string
	Course        store.Course
	ArchiveBytes  int64
	Lectures      int
	LectureSource lectures.Source
	Pdfs          int
	Renamed       int
	Strategy      string
	Degraded      bool
	Content       builder.Summary
	ScratchDir    string
	Elapsed       time.Duration
}

// Download fetches a course archive and rebuilds the course's sections and
// resources from it.
func (r *Runner) Download(ctx context.Context, slug string, opts DownloadOptions) (DownloadSummary, error) {
	started := time.Now()
	summary := DownloadSummary{RunID: r.runID()}
	ctx, logger, release, err := r.begin(ctx, slug, summary.RunID)
	if err != nil {
		return summary, err
	}
	defer release()

	acquirer := archive.NewAcquirer(r.cfg, r.store, r.site, logger)
	var (
		course *store.Course
		arc    *archive.Archive
	)
	err = runStage(ctx, logger, StageAcquire, func(ctx context.Context, logger *slog.Logger) error {
		var err error
		if course, err = acquirer.FindCourse(ctx, slug); err != nil {
			return err
		}
		arc, err = acquirer.Acquire(ctx, course, slug)
		return err
	})
	if arc != nil {
		summary.ScratchDir = arc.ExtractDir
		defer r.cleanupScratch(logger, arc, opts.KeepScratch)
	}
	if err != nil {
		return summary, err
	}
	summary.Course = *course
	summary.ArchiveBytes = arc.Bytes

	var discovered lectures.Result
	err = runStage(ctx, logger, StageLectures, func(ctx context.Context, logger *slog.Logger) error {
		var err error
		discovered, err = lectures.NewDiscoverer(r.cfg, r.site, logger).Discover(ctx, course, slug, arc.ContentRoot, opts.RefreshLectures)
		return err
	})
	if err != nil {
		return summary, err
	}
	summary.Lectures = len(discovered.Lectures)
	summary.LectureSource = discovered.Source

	var classified *classify.Result
	err = runStage(ctx, logger, StageClassify, func(ctx context.Context, logger *slog.Logger) error {
		var err error
		classified, err = classify.New(r.pages, logger).Classify(ctx, arc.ContentRoot, r.cfg.CourseContentDir(slug))
		return err
	})
	if err != nil {
		return summary, err
	}
	summary.Pdfs = len(classified.Entries)
	summary.Renamed = len(classified.Renamed)

	var outcome ordering.Outcome
	err = runStage(ctx, logger, StageOrder, func(ctx context.Context, logger *slog.Logger) error {
		digest, err := ordering.BuildDigest(arc.ContentRoot)
		if err != nil {
			logging.WarnWithContext(logger, "course digest unavailable", "digest_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "ordering runs without page context"),
			)
			digest = ""
		}
		strategy := ordering.Select(r.oracle(r.cfg.OrderingLLM()), logger)
		outcome, err = ordering.NewOrderer(strategy, logger).Order(ctx, ordering.Input{
			CourseTitle: course.Title,
			Lectures:    discovered.Lectures,
			Pdfs:        classified.Entries,
			Digest:      digest,
		})
		return err
	})
	if err != nil {
		return summary, err
	}
	summary.Strategy = outcome.Strategy
	summary.Degraded = outcome.Degraded

	err = runStage(ctx, logger, StageBuild, func(ctx context.Context, logger *slog.Logger) error {
		plan := builder.Plan(builder.PlanInput{
			Slug:         slug,
			PublicPrefix: r.cfg.Paths.PublicPrefix,
			Lectures:     discovered.Lectures,
			Pdfs:         classified.Entries,
			LectureNotes: classified.LectureNotes,
			Items:        outcome.Items,
		})
		var err error
		summary.Content, err = builder.New(r.store, logger).Build(ctx, course.ID, plan)
		return err
	})
	if err != nil {
		return summary, err
	}

	summary.Elapsed = time.Since(started)
	logger.Info("download complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("sections", summary.Content.Sections),
		logging.Int("resources", summary.Content.Resources),
		logging.String("ordering", summary.Strategy),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// ProblemsSummary reports a finished problems run.
type ProblemsSummary struct {
	RunID     string
	Course    store.Course
	Converter string
	Result    problems.Summary
	Elapsed   time.Duration
}

// Problems extracts practice problems for an already downloaded course.
func (r *Runner) Problems(ctx context.Context, slug string) (ProblemsSummary, error) {
	started := time.Now()
	summary := ProblemsSummary{RunID: r.runID()}
	ctx, logger, release, err := r.begin(ctx, slug, summary.RunID)
	if err != nil {
		return summary, err
	}
	defer release()

	oracle := r.oracle(r.cfg.ExtractionLLM())
	if !oracle.Configured() {
		return summary, services.Wrap(services.ErrConfiguration, StageProblems, "extraction oracle",
			"llm.api_key is empty", nil)
	}
	window := time.Duration(r.cfg.Conversion.RateWindowSeconds) * time.Second
	limiter, err := ratelimit.NewWindow(r.cfg.Conversion.RateLimit, window)
	if err != nil {
		return summary, services.Wrap(services.ErrConfiguration, StageProblems, "conversion limiter", "", err)
	}
	converter, err := conversion.Select(r.cfg, limiter, logger)
	if err != nil {
		return summary, err
	}
	summary.Converter = converter.Name()

	course, err := archive.NewAcquirer(r.cfg, r.store, r.site, logger).FindCourse(ctx, slug)
	if err != nil {
		return summary, err
	}
	summary.Course = *course
	if !course.ContentDownloaded {
		logging.WarnWithContext(logger, "course content not downloaded", "content_missing",
			logging.String(logging.FieldErrorHint, fmt.Sprintf("run `ocwsync download %s` first", slug)),
			logging.String(logging.FieldImpact, "no problem documents to extract"),
		)
	}

	err = runStage(ctx, logger, StageProblems, func(ctx context.Context, logger *slog.Logger) error {
		var err error
		summary.Result, err = problems.NewRunner(r.store, converter, oracle, r.site, logger).Run(ctx, *course, problems.Options{
			ContentDir:    r.cfg.CourseContentDir(slug),
			PublicBaseURL: r.cfg.Source.PublicBaseURL,
			ScratchDir:    filepath.Join(r.cfg.Paths.ScratchDir, slug+"-problems"),
		})
		return err
	})
	if err != nil {
		return summary, err
	}
	summary.Elapsed = time.Since(started)
	logger.Info("problems complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("converter", summary.Converter),
		logging.Int("problems", summary.Result.Problems),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// begin takes the course lock and scopes ctx and the logger to the run.
func (r *Runner) begin(ctx context.Context, slug, runID string) (context.Context, *slog.Logger, func(), error) {
	if slug == "" {
		return ctx, r.logger, func() {}, services.Wrap(services.ErrValidation, "", "start run", "course slug required", nil)
	}
	lock, err := runlock.Acquire(r.cfg.Paths.LockDir, slug)
	if err != nil {
		return ctx, r.logger, func() {}, err
	}
	ctx = services.WithCourse(ctx, slug)
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("run started", logging.String(logging.FieldEventType, "run_start"), logging.String("lock", lock.Path()))
	release := func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release run lock failed", logging.Error(err))
		}
	}
	return ctx, logger, release, nil
}

func (r *Runner) cleanupScratch(logger *slog.Logger, arc *archive.Archive, keep bool) {
	if keep {
		logger.Info("scratch kept", logging.String("path", arc.ExtractDir))
		return
	}
	if err := archive.Cleanup(arc); err != nil {
		logging.WarnWithContext(logger, "scratch cleanup failed", "scratch_cleanup_failed",
			logging.String("path", arc.ExtractDir),
			logging.Error(err),
			logging.String(logging.FieldImpact, "archive files remain in scratch space"),
		)
	}
}
