package ordering

import (
	"strings"

	"ocwsync/internal/content"
)

// RepairReport counts the corrections Normalize applied.
type RepairReport struct {
	UnknownTypes       int
	DroppedLectureRefs int
	InsertedLectures   int
	DroppedFiles       int
	AppendedFiles      int
	DroppedItems       int
}

// Changed reports whether any repair happened.
func (r RepairReport) Changed() bool {
	return r != RepairReport{}
}

// Normalize turns proposed oracle items into a timeline in which every
// lecture index appears exactly once and every non-lecture-notes PDF appears
// in exactly one item.
//
// Unknown types become other. Lecture items with an out-of-range or repeated
// index are dropped; missing lectures are inserted after the item holding the
// nearest lower index. Unknown, repeated, and lecture-notes filenames are
// removed, items left without files are dropped, and PDFs never mentioned are
// appended as their own items in input order.
func Normalize(proposed []proposedItem, lectures []content.LectureCandidate, pdfs []content.PdfEntry) ([]content.OrderedItem, RepairReport) {
	var report RepairReport
	known := make(map[string]content.PdfEntry, len(pdfs))
	for _, pdf := range pdfs {
		known[pdf.Filename] = pdf
	}
	placedLecture := make([]bool, len(lectures))
	usedFile := make(map[string]bool, len(pdfs))

	items := make([]content.OrderedItem, 0, len(proposed)+len(lectures))
	for _, p := range proposed {
		itemType, ok := content.ParseItemType(p.Type)
		if !ok {
			report.UnknownTypes++
		}

		if itemType == content.ItemLecture {
			idx := p.LectureIndex.Value
			if !p.LectureIndex.Set || idx < 0 || idx >= len(lectures) || placedLecture[idx] {
				report.DroppedLectureRefs++
				report.DroppedItems++
				continue
			}
			placedLecture[idx] = true
			title := strings.TrimSpace(p.Title)
			if title == "" {
				title = lectures[idx].Title
			}
			items = append(items, content.OrderedItem{
				Type:         content.ItemLecture,
				Title:        title,
				LectureIndex: content.Ptr(idx),
			})
			continue
		}

		if p.LectureIndex.Set {
			report.DroppedLectureRefs++
		}
		var files []string
		for _, name := range p.PdfFilenames {
			name = strings.TrimSpace(name)
			pdf, exists := known[name]
			if !exists || usedFile[name] || pdf.Type == content.PdfLectureNotes {
				report.DroppedFiles++
				continue
			}
			usedFile[name] = true
			files = append(files, name)
		}
		if len(files) == 0 {
			report.DroppedItems++
			continue
		}
		title := strings.TrimSpace(p.Title)
		if title == "" {
			title = known[files[0]].Title
		}
		items = append(items, content.OrderedItem{
			Type:         itemType,
			Title:        title,
			PdfFilenames: files,
		})
	}

	for idx, placed := range placedLecture {
		if placed {
			continue
		}
		items = insertLecture(items, idx, lectures[idx].Title)
		report.InsertedLectures++
	}

	for _, pdf := range pdfs {
		if pdf.Type == content.PdfLectureNotes || usedFile[pdf.Filename] {
			continue
		}
		usedFile[pdf.Filename] = true
		items = append(items, pdfItem(pdf))
		report.AppendedFiles++
	}
	return items, report
}

// insertLecture places lecture idx after the lecture item with the nearest
// lower index, or before the first lecture item when no lower one exists.
func insertLecture(items []content.OrderedItem, idx int, title string) []content.OrderedItem {
	item := content.OrderedItem{Type: content.ItemLecture, Title: title, LectureIndex: content.Ptr(idx)}
	pos := -1
	best := -1
	firstLecture := -1
	for i, existing := range items {
		if existing.LectureIndex == nil {
			continue
		}
		if firstLecture < 0 {
			firstLecture = i
		}
		if li := *existing.LectureIndex; li < idx && li > best {
			best = li
			pos = i + 1
		}
	}
	switch {
	case pos >= 0:
	case firstLecture >= 0:
		pos = firstLecture
	default:
		pos = len(items)
	}
	items = append(items, content.OrderedItem{})
	copy(items[pos+1:], items[pos:])
	items[pos] = item
	return items
}
