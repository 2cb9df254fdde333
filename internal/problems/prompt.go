package problems

import (
	"strings"
	"unicode/utf8"
)

const maxDocumentChars = 120000

const extractionSystemPrompt = `You extract practice problems from university course documents.
Return only a JSON array. Each element has:
  "problem_label": the problem's own label, such as "Problem 1" or "1(a)"
  "question_text": the full problem statement
  "solution_text": the matching solution from the solutions document, or null
  "ordering": the problem's zero-based position in the questions document
Rules:
- Keep sub-parts (a), (b), (c) together with their parent problem.
- Preserve LaTeX and other math notation exactly.
- Omit preambles, instructions, collaboration policies, and grading notes.
- Use null for solution_text when no solution is available.
- Return [] if the document contains no problems.
- Output JSON only, with no commentary.`

const noSolutionsNote = "(No separate solutions document available.)"

func buildExtractionPrompt(courseTitle, questions, solutions string) string {
	var b strings.Builder
	if courseTitle != "" {
		b.WriteString("Course: ")
		b.WriteString(courseTitle)
		b.WriteString("\n\n")
	}
	b.WriteString("## Questions document\n\n")
	b.WriteString(clip(questions))
	b.WriteString("\n\n## Solutions document\n\n")
	if strings.TrimSpace(solutions) == "" {
		b.WriteString(noSolutionsNote)
	} else {
		b.WriteString(clip(solutions))
	}
	b.WriteString("\n")
	return b.String()
}

func clip(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= maxDocumentChars {
		return text
	}
	cut := maxDocumentChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "\n[... truncated]"
}
