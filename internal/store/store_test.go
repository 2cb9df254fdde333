package store_test

import (
	"context"
	"testing"

	"ocwsync/internal/content"
	"ocwsync/internal/store"
	"ocwsync/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)

	versions, err := s.AppliedMigrations(context.Background())
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	if len(versions) != 1 || versions[0] != "0001_init" {
		t.Fatalf("unexpected migrations %v", versions)
	}
	if s.Dialect() != store.DialectSQLite {
		t.Fatalf("unexpected dialect %q", s.Dialect())
	}

	// Reopening must not reapply migrations.
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	reopened := testsupport.MustOpenStore(t, cfg)
	if versions, _ := reopened.AppliedMigrations(context.Background()); len(versions) != 1 {
		t.Fatalf("expected single migration after reopen, got %v", versions)
	}
}

func TestFindCoursesBySlugIsCaseInsensitive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedCourse(t, s, 20, "Algorithms", "https://ocw.mit.edu/courses/6-006-Spring-2020/")
	testsupport.SeedCourse(t, s, 10, "Algorithms (old)", "https://ocw.mit.edu/courses/6-006-spring-2020/archive/")
	testsupport.SeedCourse(t, s, 30, "Linear Algebra", "https://ocw.mit.edu/courses/18-06-spring-2010/")

	matches, err := s.FindCoursesBySlug(context.Background(), "6-006-SPRING-2020")
	if err != nil {
		t.Fatalf("FindCoursesBySlug: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != 10 {
		t.Fatalf("expected lowest id first, got %d", matches[0].ID)
	}

	none, err := s.FindCoursesBySlug(context.Background(), "8-01")
	if err != nil {
		t.Fatalf("FindCoursesBySlug: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %v", none)
	}
}

func TestUpsertCoursesPreservesContentFlag(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	course := testsupport.SeedCourse(t, s, 1, "Old Title", "https://ocw.mit.edu/courses/x/")

	if err := s.ReplaceCourseContent(ctx, course.ID, nil); err != nil {
		t.Fatalf("ReplaceCourseContent: %v", err)
	}
	course.Title = "New Title"
	if err := s.UpsertCourses(ctx, []store.Course{course}); err != nil {
		t.Fatalf("UpsertCourses: %v", err)
	}
	got, err := s.GetCourse(ctx, 1)
	if err != nil || got == nil {
		t.Fatalf("GetCourse: %v %v", got, err)
	}
	if got.Title != "New Title" {
		t.Fatalf("expected updated title, got %q", got.Title)
	}
	if !got.ContentDownloaded || got.ContentDownloadedAt == nil {
		t.Fatalf("expected content flag to survive upsert, got %+v", got)
	}
}

func samplePlan() []store.SectionContent {
	return []store.SectionContent{
		{
			Section: store.Section{Title: "Lecture 1", Slug: "lec1", SectionType: string(content.ItemLecture), Ordering: 0},
			Resources: []store.Resource{
				{Title: "Lecture 1", ResourceType: store.ResourceVideo, VideoURL: content.Ptr("https://www.youtube.com/watch?v=abcdefghijk"), VideoID: content.Ptr("abcdefghijk"), Ordering: 0},
			},
		},
		{
			Section: store.Section{Title: "Problem Set 1", Slug: "problem_set-1", SectionType: string(content.ItemProblemSet), Ordering: 1},
			Resources: []store.Resource{
				{Title: "Problem Set 1", ResourceType: store.ResourceProblemSet, PDFPath: content.Ptr("/content/courses/x/ps1.pdf"), Ordering: 0},
				{Title: "Problem Set 1 Solutions", ResourceType: store.ResourceSolution, PDFPath: content.Ptr("/content/courses/x/ps1-sol.pdf"), Ordering: 1},
			},
		},
	}
}

func TestReplaceCourseContentIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	course := testsupport.SeedCourse(t, s, 7, "Course", "https://ocw.mit.edu/courses/x/")

	for run := 0; run < 2; run++ {
		if err := s.ReplaceCourseContent(ctx, course.ID, samplePlan()); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
	}

	sections, err := s.ListSections(ctx, course.ID)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections after rerun, got %d", len(sections))
	}
	for i, sec := range sections {
		if sec.Ordering != i {
			t.Fatalf("section %d has ordering %d", i, sec.Ordering)
		}
	}
	resources, err := s.ListResources(ctx, course.ID)
	if err != nil {
		t.Fatalf("ListResources: %v", err)
	}
	if len(resources) != 3 {
		t.Fatalf("expected 3 resources after rerun, got %d", len(resources))
	}
	if resources[0].SectionID == nil || *resources[0].SectionID != sections[0].ID {
		t.Fatalf("video resource not linked to first section: %+v", resources[0])
	}
	if resources[2].ResourceType != store.ResourceSolution || *resources[2].SectionID != sections[1].ID {
		t.Fatalf("unexpected third resource %+v", resources[2])
	}

	problemTypes, err := s.ListResources(ctx, course.ID, store.ProblemResourceTypes...)
	if err != nil {
		t.Fatalf("ListResources filtered: %v", err)
	}
	if len(problemTypes) != 2 {
		t.Fatalf("expected 2 problem resources, got %d", len(problemTypes))
	}
}

func TestReplaceCourseContentRejectsGappedOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	course := testsupport.SeedCourse(t, s, 7, "Course", "https://ocw.mit.edu/courses/x/")

	plan := samplePlan()
	plan[1].Section.Ordering = 5
	if err := s.ReplaceCourseContent(context.Background(), course.ID, plan); err == nil {
		t.Fatal("expected error for non-contiguous ordering")
	}
}

func TestReplaceCourseContentRollsBackOnFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	course := testsupport.SeedCourse(t, s, 7, "Course", "https://ocw.mit.edu/courses/x/")
	if err := s.ReplaceCourseContent(ctx, course.ID, samplePlan()); err != nil {
		t.Fatalf("seed content: %v", err)
	}

	// Unknown course id fails at the final update, after deletes and inserts.
	if err := s.ReplaceCourseContent(ctx, 999, samplePlan()); err == nil {
		t.Fatal("expected failure for unknown course")
	}
	sections, _ := s.ListSections(ctx, course.ID)
	if len(sections) != 2 {
		t.Fatalf("existing content should be untouched, got %d sections", len(sections))
	}
}

func TestReplaceProblems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	course := testsupport.SeedCourse(t, s, 7, "Course", "https://ocw.mit.edu/courses/x/")
	if err := s.ReplaceCourseContent(ctx, course.ID, samplePlan()); err != nil {
		t.Fatalf("seed content: %v", err)
	}
	resources, _ := s.ListResources(ctx, course.ID, store.ResourceProblemSet)
	questions := resources[0]

	first := []store.Problem{
		{Label: "1", QuestionText: "Q1", Ordering: 0},
		{Label: "2", QuestionText: "Q2", SolutionText: content.Ptr("S2"), Ordering: 1},
		{Label: "3", QuestionText: "Q3", Ordering: 2},
	}
	if err := s.ReplaceProblems(ctx, questions.ID, course.ID, first); err != nil {
		t.Fatalf("ReplaceProblems: %v", err)
	}
	second := []store.Problem{{Label: "1", QuestionText: "Q1 revised", Ordering: 0}}
	if err := s.ReplaceProblems(ctx, questions.ID, course.ID, second); err != nil {
		t.Fatalf("ReplaceProblems rerun: %v", err)
	}

	got, err := s.ListProblems(ctx, questions.ID)
	if err != nil {
		t.Fatalf("ListProblems: %v", err)
	}
	if len(got) != 1 || got[0].QuestionText != "Q1 revised" || got[0].SolutionText != nil {
		t.Fatalf("expected full replacement, got %+v", got)
	}

	counts, err := s.CountProblems(ctx, course.ID)
	if err != nil {
		t.Fatalf("CountProblems: %v", err)
	}
	if counts[questions.ID] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}

	// Rebuilding the course drops problems of replaced resources.
	if err := s.ReplaceCourseContent(ctx, course.ID, samplePlan()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if counts, _ := s.CountProblems(ctx, course.ID); len(counts) != 0 {
		t.Fatalf("expected problems cascaded away, got %v", counts)
	}
}

func TestListCoursesDownloadedOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.SeedCourse(t, s, 1, "B Course", "https://ocw.mit.edu/courses/b/")
	testsupport.SeedCourse(t, s, 2, "A Course", "https://ocw.mit.edu/courses/a/")
	if err := s.ReplaceCourseContent(ctx, 1, nil); err != nil {
		t.Fatalf("ReplaceCourseContent: %v", err)
	}

	all, err := s.ListCourses(ctx, false, 0)
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if len(all) != 2 || all[0].Title != "A Course" {
		t.Fatalf("unexpected listing %+v", all)
	}
	downloaded, err := s.ListCourses(ctx, true, 10)
	if err != nil {
		t.Fatalf("ListCourses downloaded: %v", err)
	}
	if len(downloaded) != 1 || downloaded[0].ID != 1 {
		t.Fatalf("unexpected downloaded listing %+v", downloaded)
	}
}
