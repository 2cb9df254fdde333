package classify

import (
	"regexp"
	"strconv"
	"strings"

	"ocwsync/internal/content"
)

// Rule maps a matching lower-cased name to a PDF type.
type Rule struct {
	Name  string
	Type  content.PdfType
	Match func(lower string) bool
}

var (
	lecturePattern    = regexp.MustCompile(`_lec\d+`)
	recitationPattern = regexp.MustCompile(`_r\d+`)
	lectureKeyPattern = regexp.MustCompile(`(?i)_lec(\d+)`)
)

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// Rules is evaluated top to bottom; the first match wins.
var Rules = []Rule{
	{
		Name: "lecture",
		Type: content.PdfLectureNotes,
		Match: func(s string) bool {
			return lecturePattern.MatchString(s) || strings.Contains(s, "lecture")
		},
	},
	{
		Name: "assignment_solution",
		Type: content.PdfSolution,
		Match: func(s string) bool {
			return strings.Contains(s, "sol") && containsAny(s, "ps", "hw", "pset")
		},
	},
	{
		Name: "assignment",
		Type: content.PdfProblemSet,
		Match: func(s string) bool {
			return containsAny(s, "_ps", "pset", "homework", "_hw")
		},
	},
	{
		Name: "exam",
		Type: content.PdfExam,
		Match: func(s string) bool {
			return containsAny(s, "final", "quiz", "exam", "midterm")
		},
	},
	{
		Name: "recitation",
		Type: content.PdfRecitation,
		Match: func(s string) bool {
			return recitationPattern.MatchString(s) || strings.Contains(s, "recitation")
		},
	},
	{
		Name: "solution",
		Type: content.PdfSolution,
		Match: func(s string) bool {
			return strings.Contains(s, "sol")
		},
	},
}

// GuessType applies Rules to name and returns other when none match.
func GuessType(name string) content.PdfType {
	lower := strings.ToLower(name)
	for _, rule := range Rules {
		if rule.Match(lower) {
			return rule.Type
		}
	}
	return content.PdfOther
}

// lectureKey returns the lecture number encoded as _lecN in a filename.
func lectureKey(filename string) (int, bool) {
	m := lectureKeyPattern.FindStringSubmatch(filename)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
