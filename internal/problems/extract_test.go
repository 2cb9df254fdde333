package problems

import (
	"context"
	"testing"
)

type cannedCompleter struct{ answer string }

func (c cannedCompleter) Configured() bool { return true }
func (c cannedCompleter) Model() string    { return "test-model" }
func (c cannedCompleter) Complete(context.Context, string, string) (string, error) {
	return c.answer, nil
}

func TestExtractAcceptsLooselyTypedFields(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		labels []string
		first  string
	}{
		{
			name:   "string fields",
			answer: `[{"problem_label":"1a","question_text":"Q1","ordering":0},{"problem_label":"1b","question_text":"Q2","ordering":1}]`,
			labels: []string{"1a", "1b"},
			first:  "Q1",
		},
		{
			name:   "numeric label",
			answer: `[{"problem_label":1,"question_text":"Q1","solution_text":"S1","ordering":0}]`,
			labels: []string{"1"},
			first:  "Q1",
		},
		{
			name:   "string ordering",
			answer: `[{"problem_label":"2","question_text":"Q2","ordering":"1"},{"problem_label":"1","question_text":"Q1","ordering":"0"}]`,
			labels: []string{"1", "2"},
			first:  "Q1",
		},
		{
			name:   "float ordering and null label",
			answer: `[{"problem_label":null,"question_text":"Q2","ordering":1.0},{"problem_label":"A","question_text":"Q1","ordering":0.0}]`,
			labels: []string{"A", "Problem 2"},
			first:  "Q1",
		},
		{
			name:   "unparseable ordering falls back to position",
			answer: `[{"problem_label":"x","question_text":"Q1","ordering":"first"},{"problem_label":"y","question_text":"Q2","ordering":true}]`,
			labels: []string{"x", "y"},
			first:  "Q1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extract(context.Background(), cannedCompleter{answer: tt.answer}, "Algorithms", "questions", "solutions")
			if err != nil {
				t.Fatalf("extract: %v", err)
			}
			if len(got) != len(tt.labels) {
				t.Fatalf("expected %d problems, got %+v", len(tt.labels), got)
			}
			for i, label := range tt.labels {
				if got[i].Label != label || got[i].Ordering != i {
					t.Fatalf("problem %d = %+v, want label %q", i, got[i], label)
				}
			}
			if got[0].QuestionText != tt.first {
				t.Fatalf("first question = %q, want %q", got[0].QuestionText, tt.first)
			}
		})
	}
}

func TestExtractRejectsNonArrayAnswer(t *testing.T) {
	_, err := extract(context.Background(), cannedCompleter{answer: "I could not find any problems."}, "Algorithms", "questions", "")
	if _, ok := err.(errUnparseable); !ok {
		t.Fatalf("expected errUnparseable, got %v", err)
	}
}
