package ordering

import (
	"context"
	"log/slog"

	"ocwsync/internal/content"
	"ocwsync/internal/logging"
)

// Input is everything a strategy may use to order a course.
type Input struct {
	CourseTitle string
	Lectures    []content.LectureCandidate
	Pdfs        []content.PdfEntry
	Digest      string
}

// Strategy produces an ordered timeline for a course.
type Strategy interface {
	Name() string
	Order(ctx context.Context, in Input) ([]content.OrderedItem, error)
}

// Completer is the LLM surface used by OracleStrategy.
type Completer interface {
	Configured() bool
	Model() string
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// FallbackStrategy lists all lectures, then every PDF other than lecture
// notes as its own item, both in input order.
type FallbackStrategy struct{}

// Name implements Strategy.
func (FallbackStrategy) Name() string { return "fallback" }

// Order implements Strategy. It never fails.
func (FallbackStrategy) Order(_ context.Context, in Input) ([]content.OrderedItem, error) {
	return Fallback(in.Lectures, in.Pdfs), nil
}

// Fallback is the deterministic ordering used when the oracle cannot help.
func Fallback(lectures []content.LectureCandidate, pdfs []content.PdfEntry) []content.OrderedItem {
	items := make([]content.OrderedItem, 0, len(lectures)+len(pdfs))
	for i, lecture := range lectures {
		items = append(items, content.OrderedItem{
			Type:         content.ItemLecture,
			Title:        lecture.Title,
			LectureIndex: content.Ptr(i),
		})
	}
	for _, pdf := range pdfs {
		if pdf.Type == content.PdfLectureNotes {
			continue
		}
		items = append(items, pdfItem(pdf))
	}
	return items
}

func pdfItem(pdf content.PdfEntry) content.OrderedItem {
	return content.OrderedItem{
		Type:         content.ItemTypeForPdf(pdf.Type),
		Title:        pdf.Title,
		PdfFilenames: []string{pdf.Filename},
	}
}

// Select returns the oracle strategy when client holds credentials and the
// fallback otherwise.
func Select(client Completer, logger *slog.Logger) Strategy {
	if client != nil && client.Configured() {
		return NewOracleStrategy(client, logger)
	}
	return FallbackStrategy{}
}

// Outcome is the result of Orderer.Order.
type Outcome struct {
	Items    []content.OrderedItem
	Strategy string
	// Degraded is set when the selected strategy failed and the fallback
	// produced Items.
	Degraded bool
}

// Orderer runs a strategy and degrades to the fallback when it fails.
type Orderer struct {
	primary  Strategy
	fallback Strategy
	logger   *slog.Logger
}

// NewOrderer wraps primary. A nil primary means fallback only.
func NewOrderer(primary Strategy, logger *slog.Logger) *Orderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	if primary == nil {
		primary = FallbackStrategy{}
	}
	return &Orderer{
		primary:  primary,
		fallback: FallbackStrategy{},
		logger:   logging.NewComponentLogger(logger, "ordering"),
	}
}

// Order returns an ordered timeline. Only context cancellation is returned
// as an error.
func (o *Orderer) Order(ctx context.Context, in Input) (Outcome, error) {
	items, err := o.primary.Order(ctx, in)
	if err == nil {
		o.logger.Info("course content ordered",
			logging.String("strategy", o.primary.Name()),
			logging.Int("items", len(items)),
			logging.String(logging.FieldDecisionType, "ordering_strategy"),
		)
		return Outcome{Items: items, Strategy: o.primary.Name()}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Outcome{}, ctxErr
	}
	logging.WarnWithContext(o.logger, "ordering oracle failed; using fallback order", "ordering_fallback",
		logging.String("strategy", o.primary.Name()),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check llm.api_key and the ordering model"),
		logging.String(logging.FieldImpact, "lectures are listed before all other material"),
	)
	items, _ = o.fallback.Order(ctx, in)
	return Outcome{Items: items, Strategy: o.fallback.Name(), Degraded: true}, nil
}
