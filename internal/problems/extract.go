package problems

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"ocwsync/internal/services/llm"
	"ocwsync/internal/store"
)

// Completer is the LLM surface used for extraction.
type Completer interface {
	Configured() bool
	Model() string
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type extractedProblem struct {
	Label        problemLabel `json:"problem_label"`
	QuestionText string       `json:"question_text"`
	SolutionText *string      `json:"solution_text"`
	Ordering     problemOrder `json:"ordering"`
}

// problemLabel accepts "1a", 1, or null. Other values count as missing.
type problemLabel string

func (l *problemLabel) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" || text == "" {
		*l = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = problemLabel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*l = ""
		return nil
	}
	*l = problemLabel(n.String())
	return nil
}

// problemOrder accepts 0, "0", 2.0, or null. Unparseable values count as
// absent so the answer position decides.
type problemOrder struct {
	Value int
	Set   bool
}

func (o *problemOrder) UnmarshalJSON(data []byte) error {
	*o = problemOrder{}
	text := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	if text == "" || text == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*o = problemOrder{Value: int(f), Set: true}
	return nil
}

// errUnparseable marks an oracle answer that is not a problem array.
type errUnparseable struct{ err error }

func (e errUnparseable) Error() string { return "decode extraction response: " + e.err.Error() }
func (e errUnparseable) Unwrap() error { return e.err }

// extract asks the oracle for the problems in questions, answered from
// solutions when present.
func extract(ctx context.Context, client Completer, courseTitle, questions, solutions string) ([]store.Problem, error) {
	if client == nil || !client.Configured() {
		return nil, fmt.Errorf("extraction oracle: %w", llm.ErrUnavailable)
	}
	raw, err := client.Complete(ctx, extractionSystemPrompt, buildExtractionPrompt(courseTitle, questions, solutions))
	if err != nil {
		return nil, fmt.Errorf("extraction oracle: %w", err)
	}
	var items []extractedProblem
	if err := llm.DecodeLLMJSON(llm.StripCodeFence(raw), &items); err != nil {
		return nil, errUnparseable{err: err}
	}
	return normalizeProblems(items, strings.TrimSpace(solutions) != ""), nil
}

// normalizeProblems drops empty questions, orders by the oracle's ordering
// with answer position breaking ties, and renumbers 0..n-1.
func normalizeProblems(items []extractedProblem, haveSolutions bool) []store.Problem {
	type ranked struct {
		item extractedProblem
		rank int
		pos  int
	}
	kept := make([]ranked, 0, len(items))
	for i, item := range items {
		item.QuestionText = strings.TrimSpace(item.QuestionText)
		if item.QuestionText == "" {
			continue
		}
		rank := i
		if item.Ordering.Set {
			rank = item.Ordering.Value
		}
		kept = append(kept, ranked{item: item, rank: rank, pos: i})
	}
	sort.SliceStable(kept, func(a, b int) bool {
		if kept[a].rank != kept[b].rank {
			return kept[a].rank < kept[b].rank
		}
		return kept[a].pos < kept[b].pos
	})

	problems := make([]store.Problem, 0, len(kept))
	for i, k := range kept {
		label := strings.TrimSpace(string(k.item.Label))
		if label == "" {
			label = fmt.Sprintf("Problem %d", i+1)
		}
		var solution *string
		if haveSolutions && k.item.SolutionText != nil {
			if text := strings.TrimSpace(*k.item.SolutionText); text != "" {
				solution = &text
			}
		}
		problems = append(problems, store.Problem{
			Label:        label,
			QuestionText: k.item.QuestionText,
			SolutionText: solution,
			Ordering:     i,
		})
	}
	return problems
}
