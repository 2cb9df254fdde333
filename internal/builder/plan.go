package builder

import (
	"fmt"
	"strings"

	"ocwsync/internal/content"
	"ocwsync/internal/store"
	"ocwsync/internal/textutil"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// PlanInput carries the outputs of discovery, classification, and ordering.
type PlanInput struct {
	Slug         string
	PublicPrefix string
	Lectures     []content.LectureCandidate
	Pdfs         []content.PdfEntry
	LectureNotes map[int][]string
	Items        []content.OrderedItem
}

// Plan builds the sections and resources for one course. Section orderings
// follow the item order from zero.
func Plan(in PlanInput) []store.SectionContent {
	titles := make(map[string]string, len(in.Pdfs))
	for _, pdf := range in.Pdfs {
		titles[pdf.Filename] = pdf.Title
	}
	pdfTitle := func(name string) string {
		if title, ok := titles[name]; ok && title != "" {
			return title
		}
		return textutil.FilenameTitle(name)
	}
	pdfPath := func(name string) *string {
		p := strings.TrimRight(in.PublicPrefix, "/") + "/" + in.Slug + "/" + name
		return &p
	}

	plan := make([]store.SectionContent, 0, len(in.Items))
	for i, item := range in.Items {
		section := store.Section{
			Title:       item.Title,
			SectionType: string(item.Type),
			Ordering:    i,
		}
		var resources []store.Resource

		if item.Type == content.ItemLecture && item.LectureIndex != nil {
			idx := *item.LectureIndex
			section.Slug = fmt.Sprintf("item-%d", i)
			if idx >= 0 && idx < len(in.Lectures) {
				lecture := in.Lectures[idx]
				if lecture.Slug != "" {
					section.Slug = lecture.Slug
				}
				resources = lectureResources(lecture, in.LectureNotes, pdfTitle, pdfPath)
			}
		} else {
			section.Slug = fmt.Sprintf("%s-%d", item.Type, i)
			for j, name := range item.PdfFilenames {
				resources = append(resources, store.Resource{
					Title:        pdfTitle(name),
					ResourceType: resourceTypeFor(item.Type, name),
					PDFPath:      pdfPath(name),
					Ordering:     j,
				})
			}
		}
		plan = append(plan, store.SectionContent{Section: section, Resources: resources})
	}
	return plan
}

func lectureResources(lecture content.LectureCandidate, notes map[int][]string, title func(string) string, pdfPath func(string) *string) []store.Resource {
	var resources []store.Resource
	ordering := 0
	if video := videoResource(lecture); video != nil {
		video.Ordering = ordering
		ordering++
		resources = append(resources, *video)
	}
	if lecture.LectureNumber != nil {
		for _, name := range notes[*lecture.LectureNumber] {
			resources = append(resources, store.Resource{
				Title:        title(name),
				ResourceType: store.ResourceLectureNotes,
				PDFPath:      pdfPath(name),
				Ordering:     ordering,
			})
			ordering++
		}
	}
	return resources
}

// videoResource links the primary video, else the archival mirror. It
// returns nil when the lecture has neither.
func videoResource(lecture content.LectureCandidate) *store.Resource {
	id := trimmed(lecture.VideoID)
	archive := trimmed(lecture.ArchiveURL)
	if id == nil && archive == nil {
		return nil
	}
	r := &store.Resource{
		Title:        lecture.Title,
		ResourceType: store.ResourceVideo,
		VideoID:      id,
		ArchiveURL:   archive,
	}
	if id != nil {
		r.VideoURL = content.Ptr(watchURLPrefix + *id)
	} else {
		r.VideoURL = archive
	}
	return r
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

// resourceTypeFor types a PDF within a non-lecture item: any filename
// containing "sol" is a solution, everything else takes the item type.
func resourceTypeFor(itemType content.ItemType, filename string) string {
	if strings.Contains(strings.ToLower(filename), "sol") {
		return store.ResourceSolution
	}
	switch itemType {
	case content.ItemProblemSet:
		return store.ResourceProblemSet
	case content.ItemExam:
		return store.ResourceExam
	case content.ItemRecitation:
		return store.ResourceRecitation
	default:
		return store.ResourceOther
	}
}
