package ordering

import (
	"fmt"
	"strings"
)

// orderingSystemPrompt fixes the output contract of the ordering oracle.
const orderingSystemPrompt = `You build the sidebar of an MIT OpenCourseWare class: ONE interleaved list of lectures, problem sets, recitations and exams in the order a student meets them during the semester.

Rules:
1. Interleave. A recitation with the same number as a lecture goes right after that lecture. A problem set goes after the last lecture it covers.
2. Every lecture index listed must appear exactly once.
3. Skip "lecture_notes" PDFs; they attach to their lecture automatically.
4. Put a solution PDF in the same item as its problem set (both filenames in pdfFilenames).
5. Give non-lecture items clean human titles such as "Problem Set 1", "Quiz 1", "Recitation 3", never raw filenames.
6. If a PDF does not clearly belong anywhere, place it near the most relevant lecture, not at the end.
7. Items numbered 0 (pre-assessments) come first.
8. Output ONLY a JSON array, no markdown fences and no commentary.

Each element:
{"type": "lecture" | "problem_set" | "exam" | "recitation" | "other", "title": "<clean title>", "lectureIndex": <L-number for lectures, null otherwise>, "pdfFilenames": ["<exact filename>"]}

Lectures use their L-number and an empty pdfFilenames. Other items use lectureIndex null and exact filenames from the PDF list.`

func buildOrderingPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Course: %q\n\n", in.CourseTitle)
	if digest := strings.TrimSpace(in.Digest); digest != "" {
		b.WriteString("## Course pages (from the archive)\n\n")
		b.WriteString("These pages are the authoritative source for ordering; calendar and syllabus pages say which lectures precede which problem sets.\n\n")
		b.WriteString(digest)
		b.WriteString("\n\n---\n\n")
	}
	b.WriteString("## Lectures\n")
	for i, lecture := range in.Lectures {
		fmt.Fprintf(&b, "  [L%d] %s\n", i, lecture.Title)
	}
	b.WriteString("\n## PDF files in the archive\n")
	for _, pdf := range in.Pdfs {
		fmt.Fprintf(&b, "  [%s] %s - %q\n", pdf.Type, pdf.Filename, pdf.Title)
	}
	if n := len(in.Lectures); n > 0 {
		fmt.Fprintf(&b, "\nProduce the interleaved JSON array. Lectures [L0..L%d] must each appear exactly once.\n", n-1)
	} else {
		b.WriteString("\nThis course has no lecture videos. Produce the JSON array of the PDFs in semester order.\n")
	}
	return b.String()
}
