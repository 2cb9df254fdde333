package builder

import (
	"context"
	"log/slog"

	"ocwsync/internal/logging"
	"ocwsync/internal/services"
	"ocwsync/internal/store"
)

const stageName = "build"

// ContentWriter is the store subset used by Build.
type ContentWriter interface {
	ReplaceCourseContent(ctx context.Context, courseID int64, plan []store.SectionContent) error
}

// Summary counts what Build persisted.
type Summary struct {
	Sections  int
	Resources int
	Videos    int
	Pdfs      int
}

// Summarize counts the sections and resources of plan.
func Summarize(plan []store.SectionContent) Summary {
	s := Summary{Sections: len(plan)}
	for _, sc := range plan {
		for _, r := range sc.Resources {
			s.Resources++
			if r.ResourceType == store.ResourceVideo {
				s.Videos++
			}
			if r.PDFPath != nil {
				s.Pdfs++
			}
		}
	}
	return s
}

// Builder persists planned course content.
type Builder struct {
	writer ContentWriter
	logger *slog.Logger
}

// New builds a Builder.
func New(writer ContentWriter, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Builder{writer: writer, logger: logging.NewComponentLogger(logger, "builder")}
}

// Build replaces the course's sections and resources with plan.
func (b *Builder) Build(ctx context.Context, courseID int64, plan []store.SectionContent) (Summary, error) {
	summary := Summarize(plan)
	if err := b.writer.ReplaceCourseContent(ctx, courseID, plan); err != nil {
		return Summary{}, services.Wrap(services.ErrPersistence, stageName, "replace course content", "", err)
	}
	b.logger.Info("course content persisted",
		logging.Int64("course_id", courseID),
		logging.Int("sections", summary.Sections),
		logging.Int("resources", summary.Resources),
		logging.Int("videos", summary.Videos),
		logging.Int("pdfs", summary.Pdfs),
	)
	return summary, nil
}
