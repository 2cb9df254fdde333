package ordering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"ocwsync/internal/content"
	"ocwsync/internal/logging"
	"ocwsync/internal/services/llm"
)

// OracleStrategy orders content with an LLM and repairs its answer.
type OracleStrategy struct {
	client Completer
	logger *slog.Logger
}

// NewOracleStrategy builds an OracleStrategy around client.
func NewOracleStrategy(client Completer, logger *slog.Logger) *OracleStrategy {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &OracleStrategy{client: client, logger: logging.NewComponentLogger(logger, "ordering_oracle")}
}

// Name implements Strategy.
func (s *OracleStrategy) Name() string { return "oracle" }

// Order implements Strategy.
func (s *OracleStrategy) Order(ctx context.Context, in Input) ([]content.OrderedItem, error) {
	if s.client == nil || !s.client.Configured() {
		return nil, fmt.Errorf("ordering oracle: %w", llm.ErrUnavailable)
	}
	prompt := buildOrderingPrompt(in)
	s.logger.Info("requesting content order",
		logging.String("model", s.client.Model()),
		logging.Int("lectures", len(in.Lectures)),
		logging.Int("pdfs", len(in.Pdfs)),
		logging.Bool("with_digest", in.Digest != ""),
		logging.Int("prompt_chars", len(prompt)),
	)
	raw, err := s.client.Complete(ctx, orderingSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("ordering oracle: %w", err)
	}
	var proposed []proposedItem
	if err := llm.DecodeLLMJSON(llm.StripCodeFence(raw), &proposed); err != nil {
		return nil, fmt.Errorf("ordering oracle: decode response: %w", err)
	}
	if len(proposed) == 0 {
		return nil, errors.New("ordering oracle: empty response")
	}

	items, report := Normalize(proposed, in.Lectures, in.Pdfs)
	if report.Changed() {
		s.logger.Info("oracle order repaired",
			logging.Int("unknown_types", report.UnknownTypes),
			logging.Int("dropped_lecture_refs", report.DroppedLectureRefs),
			logging.Int("inserted_lectures", report.InsertedLectures),
			logging.Int("dropped_files", report.DroppedFiles),
			logging.Int("appended_files", report.AppendedFiles),
			logging.Int("dropped_items", report.DroppedItems),
		)
	}
	return items, nil
}

// proposedItem is one oracle element before repair.
type proposedItem struct {
	Type         string       `json:"type"`
	Title        string       `json:"title"`
	LectureIndex lectureIndex `json:"lectureIndex"`
	PdfFilenames []string     `json:"pdfFilenames"`
}

// lectureIndex accepts 3, "3", "L3", or null.
type lectureIndex struct {
	Value int
	Set   bool
}

func (l *lectureIndex) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" || text == "" {
		*l = lectureIndex{}
		return nil
	}
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(unquoted), "L"), "l")
		if text == "" {
			*l = lectureIndex{}
			return nil
		}
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		// Unparseable indices are treated as absent and repaired later.
		*l = lectureIndex{}
		return nil
	}
	*l = lectureIndex{Value: v, Set: true}
	return nil
}
