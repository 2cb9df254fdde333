package content

import (
	"strings"
)

// PdfType is the classified kind of a PDF found in a course archive.
type PdfType string

const (
	PdfLectureNotes PdfType = "lecture_notes"
	PdfProblemSet   PdfType = "problem_set"
	PdfExam         PdfType = "exam"
	PdfSolution     PdfType = "solution"
	PdfRecitation   PdfType = "recitation"
	PdfOther        PdfType = "other"
)

// ItemType is the kind of one ordered timeline entry, and later its section type.
type ItemType string

const (
	ItemLecture    ItemType = "lecture"
	ItemProblemSet ItemType = "problem_set"
	ItemExam       ItemType = "exam"
	ItemRecitation ItemType = "recitation"
	ItemOther      ItemType = "other"
)

// ParseItemType maps free-form oracle output to a known item type.
func ParseItemType(value string) (ItemType, bool) {
	switch ItemType(strings.ToLower(strings.TrimSpace(value))) {
	case ItemLecture:
		return ItemLecture, true
	case ItemProblemSet:
		return ItemProblemSet, true
	case ItemExam:
		return ItemExam, true
	case ItemRecitation:
		return ItemRecitation, true
	case ItemOther:
		return ItemOther, true
	default:
		return ItemOther, false
	}
}

// ItemTypeForPdf maps a classified PDF type to the item that carries it when
// no oracle groups it. Solutions travel with problem sets.
func ItemTypeForPdf(t PdfType) ItemType {
	switch t {
	case PdfProblemSet, PdfSolution:
		return ItemProblemSet
	case PdfExam:
		return ItemExam
	case PdfRecitation:
		return ItemRecitation
	default:
		return ItemOther
	}
}

// LectureCandidate is one discovered lecture video.
type LectureCandidate struct {
	Title         string  `json:"title"`
	Slug          string  `json:"slug"`
	VideoID       *string `json:"youtubeId"`
	ArchiveURL    *string `json:"archiveUrl"`
	LectureNumber *int    `json:"lectureNumber"`
}

// PdfEntry is one renamed and classified PDF.
type PdfEntry struct {
	Filename         string  `json:"filename"`
	OriginalFilename string  `json:"originalFilename"`
	Title            string  `json:"title"`
	Type             PdfType `json:"type"`
	PageCount        int     `json:"pageCount,omitempty"`
}

// OrderedItem is the pre-persistence form of one section.
type OrderedItem struct {
	Type         ItemType `json:"type"`
	Title        string   `json:"title"`
	LectureIndex *int     `json:"lectureIndex,omitempty"`
	PdfFilenames []string `json:"pdfFilenames,omitempty"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
