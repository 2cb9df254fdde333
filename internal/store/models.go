package store

import "time"

// Resource types persisted in resources.resource_type.
const (
	ResourceVideo        = "video"
	ResourceLectureNotes = "lecture_notes"
	ResourceProblemSet   = "problem_set"
	ResourceExam         = "exam"
	ResourceSolution     = "solution"
	ResourceRecitation   = "recitation"
	ResourceOther        = "other"
)

// ProblemResourceTypes are the resource types the problem pipeline consumes.
var ProblemResourceTypes = []string{ResourceProblemSet, ResourceExam, ResourceSolution}

// Course is a catalog entry. Content flags are the only columns written by
// the download pipeline.
type Course struct {
	ID                  int64
	ReadableID          string
	Title               string
	Description         string
	URL                 string
	ImageURL            string
	ContentDownloaded   bool
	ContentDownloadedAt *time.Time
}

// Section is one ordered timeline unit of a course.
type Section struct {
	ID          int64
	CourseID    int64
	Title       string
	Slug        string
	SectionType string
	Ordering    int
	CreatedAt   time.Time
}

// Resource is a video or file attached to a section.
type Resource struct {
	ID           int64
	CourseID     int64
	SectionID    *int64
	Title        string
	ResourceType string
	PDFPath      *string
	VideoURL     *string
	VideoID      *string
	ArchiveURL   *string
	Ordering     int
	CreatedAt    time.Time
}

// Problem is one extracted practice problem owned by a questions resource.
type Problem struct {
	ID           int64
	ResourceID   int64
	CourseID     int64
	Label        string
	QuestionText string
	SolutionText *string
	Ordering     int
	CreatedAt    time.Time
}

// SectionContent is a section together with its resources, ready to insert.
// IDs and section back-references are assigned by ReplaceCourseContent.
type SectionContent struct {
	Section   Section
	Resources []Resource
}
