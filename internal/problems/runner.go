package problems

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"ocwsync/internal/conversion"
	"ocwsync/internal/logging"
	"ocwsync/internal/services"
	"ocwsync/internal/store"
)

const stageName = "problems"

// Store is the persistence surface of a run.
type Store interface {
	ListResources(ctx context.Context, courseID int64, types ...string) ([]store.Resource, error)
	ReplaceProblems(ctx context.Context, resourceID, courseID int64, problems []store.Problem) error
}

// Downloader fetches remote PDFs.
type Downloader interface {
	Download(ctx context.Context, rawURL, dest string) (int64, error)
}

// Options locate PDFs for a run.
type Options struct {
	// ContentDir is the course's local public directory, checked first.
	ContentDir string
	// PublicBaseURL prefixes relative pdf paths that are not found locally.
	PublicBaseURL string
	// ScratchDir receives downloaded PDFs; it is removed when the run ends.
	ScratchDir string
}

// Summary counts what a run did.
type Summary struct {
	Groups    int
	Extracted int
	Problems  int
	Skipped   int
	Paired    int
}

// Runner extracts problems for one course at a time.
type Runner struct {
	store     Store
	converter conversion.Converter
	oracle    Completer
	fetch     Downloader
	logger    *slog.Logger
}

// NewRunner builds a Runner. fetch may be nil when every PDF is local.
func NewRunner(st Store, converter conversion.Converter, oracle Completer, fetch Downloader, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		store:     st,
		converter: converter,
		oracle:    oracle,
		fetch:     fetch,
		logger:    logging.NewComponentLogger(logger, "problems"),
	}
}

// Run extracts and stores problems for every questions document of course.
func (r *Runner) Run(ctx context.Context, course store.Course, opts Options) (Summary, error) {
	resources, err := r.store.ListResources(ctx, course.ID, store.ProblemResourceTypes...)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrPersistence, stageName, "list resources", "", err)
	}
	groups := BuildGroups(resources)
	summary := Summary{Groups: len(groups)}
	r.logger.Info("problem documents grouped",
		logging.Int("resources", len(resources)),
		logging.Int("groups", len(groups)),
	)
	if opts.ScratchDir != "" {
		defer os.RemoveAll(opts.ScratchDir)
	}

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if g.Paired {
			summary.Paired++
			r.logger.Info("solutions paired across sections",
				logging.Args(append(logging.DecisionAttrs("solution_pairing", "paired", "assignment key match"),
					logging.String("questions", resourceFile(g.Questions)),
					logging.String("solutions", resourceFile(g.Solutions)),
				)...)...,
			)
		}
		count, err := r.runGroup(ctx, course, opts, g)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, services.ErrPersistence) {
				return summary, err
			}
			summary.Skipped++
			logging.WarnWithContext(r.logger, "problem document skipped", "problems_skipped",
				logging.Int64("resource_id", g.Questions.ID),
				logging.String("file", resourceFile(g.Questions)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, services.Hint(err)),
				logging.String(logging.FieldImpact, "previous problems for this document are kept"),
			)
			continue
		}
		summary.Extracted++
		summary.Problems += count
	}
	r.logger.Info("problem extraction finished",
		logging.Int("groups", summary.Groups),
		logging.Int("extracted", summary.Extracted),
		logging.Int("problems", summary.Problems),
		logging.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

var errNoProblems = errors.New("no problems extracted")

func (r *Runner) runGroup(ctx context.Context, course store.Course, opts Options, g Group) (int, error) {
	questionsPath, err := r.resolve(ctx, opts, g.Questions)
	if err != nil {
		return 0, err
	}
	questions, err := r.converter.Convert(ctx, questionsPath)
	if err != nil {
		return 0, fmt.Errorf("convert questions: %w", err)
	}
	if strings.TrimSpace(questions) == "" {
		return 0, services.Wrap(services.ErrValidation, stageName, "convert questions", "empty text", nil)
	}

	solutions := r.solutionsText(ctx, opts, g)
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	problems, err := extract(ctx, r.oracle, course.Title, questions, solutions)
	if err != nil {
		return 0, err
	}
	if len(problems) == 0 {
		return 0, errNoProblems
	}
	if err := r.store.ReplaceProblems(ctx, g.Questions.ID, course.ID, problems); err != nil {
		return 0, services.Wrap(services.ErrPersistence, stageName, "replace problems", resourceFile(g.Questions), err)
	}
	r.logger.Info("problems stored",
		logging.Int64("resource_id", g.Questions.ID),
		logging.String("file", resourceFile(g.Questions)),
		logging.Int("problems", len(problems)),
		logging.Bool("with_solutions", solutions != ""),
	)
	return len(problems), nil
}

// solutionsText converts the answer key. Failures degrade to no solutions.
func (r *Runner) solutionsText(ctx context.Context, opts Options, g Group) string {
	if g.Solutions == nil {
		return ""
	}
	solutionsPath, err := r.resolve(ctx, opts, g.Solutions)
	if err == nil {
		var text string
		text, err = r.converter.Convert(ctx, solutionsPath)
		if err == nil {
			return strings.TrimSpace(text)
		}
	}
	if ctx.Err() == nil {
		logging.WarnWithContext(r.logger, "solutions unavailable", "solutions_skipped",
			logging.String("file", resourceFile(g.Solutions)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "problems are stored without solutions"),
		)
	}
	return ""
}

// resolve returns a local path for the resource's PDF, downloading it into
// the scratch directory when it is not in the content directory.
func (r *Runner) resolve(ctx context.Context, opts Options, res *store.Resource) (string, error) {
	if res.PDFPath == nil || strings.TrimSpace(*res.PDFPath) == "" {
		return "", services.Wrap(services.ErrValidation, stageName, "resolve pdf", "resource has no pdf path", nil)
	}
	pdfPath := strings.TrimSpace(*res.PDFPath)
	name := path.Base(pdfPath)
	if opts.ContentDir != "" {
		local := filepath.Join(opts.ContentDir, name)
		if info, err := os.Stat(local); err == nil && info.Mode().IsRegular() {
			return local, nil
		}
	}

	rawURL := pdfPath
	if !strings.HasPrefix(pdfPath, "http://") && !strings.HasPrefix(pdfPath, "https://") {
		if opts.PublicBaseURL == "" {
			return "", services.Wrap(services.ErrConfiguration, stageName, "resolve pdf",
				name+" is not stored locally and source.public_base_url is empty", nil)
		}
		rawURL = strings.TrimRight(opts.PublicBaseURL, "/") + "/" + strings.TrimLeft(pdfPath, "/")
	}
	if r.fetch == nil || opts.ScratchDir == "" {
		return "", services.Wrap(services.ErrConfiguration, stageName, "resolve pdf", "no downloader configured", nil)
	}
	dest := filepath.Join(opts.ScratchDir, strconv.FormatInt(res.ID, 10)+"-"+name)
	if _, err := r.fetch.Download(ctx, rawURL, dest); err != nil {
		return "", services.Wrap(services.ErrExternalService, stageName, "download pdf", rawURL, err)
	}
	return dest, nil
}
