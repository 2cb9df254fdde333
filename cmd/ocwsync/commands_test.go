package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ocwsync/internal/content"
	"ocwsync/internal/services"
	"ocwsync/internal/store"
	"ocwsync/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "LLM key set: no")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestCatalogSyncAndCourses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":2,"next":null,"results":[
			{"id":1,"readable_id":"6.006","title":"Introduction to Algorithms","url":"https://ocw.example.edu/courses/6-006"},
			{"id":2,"readable_id":"18.01","title":"Calculus","url":"https://ocw.example.edu/courses/18-01"}]}`))
	}))
	defer srv.Close()

	env := setupCLITestEnv(t)
	env.cfg.Catalog.BaseURL = srv.URL + "/api/v1/courses/"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"catalog", "sync"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog sync: %v", err)
	}
	requireContains(t, out, "Synced 2 courses from 1 pages")

	out, _, err = runCLI(t, []string{"courses"}, env.configPath)
	if err != nil {
		t.Fatalf("courses: %v", err)
	}
	requireContains(t, out, "Introduction to Algorithms")
	requireContains(t, out, "18.01")

	out, _, err = runCLI(t, []string{"courses", "--downloaded"}, env.configPath)
	if err != nil {
		t.Fatalf("courses --downloaded: %v", err)
	}
	requireContains(t, out, "No courses found")
}

func TestShowRendersSectionsAndProblems(t *testing.T) {
	env := setupCLITestEnv(t)
	s := env.openStore(t)
	course := testsupport.SeedCourse(t, s, 5, "Algorithms", "https://ocw.example.edu/courses/6-006")
	plan := []store.SectionContent{{
		Section: store.Section{Title: "Problem Set 1", Slug: "problem_set-0", SectionType: "problem_set", Ordering: 0},
		Resources: []store.Resource{{
			Title:        "Problem Set 1",
			ResourceType: store.ResourceProblemSet,
			PDFPath:      content.Ptr("/content/courses/6-006/ps1.pdf"),
		}},
	}}
	ctx := context.Background()
	if err := s.ReplaceCourseContent(ctx, course.ID, plan); err != nil {
		t.Fatal(err)
	}
	resources, err := s.ListResources(ctx, course.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceProblems(ctx, resources[0].ID, course.ID, []store.Problem{
		{Label: "1", QuestionText: "Q1", Ordering: 0},
		{Label: "2", QuestionText: "Q2", Ordering: 1},
	}); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"show", "6-006"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Problem Set 1")
	requireContains(t, out, "/content/courses/6-006/ps1.pdf")
	requireContains(t, out, "problem_set")

	_, _, err = runCLI(t, []string{"show", "missing"}, env.configPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDownloadUnknownCourse(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"download", "missing", "--skip-checks"}, env.configPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if services.Hint(err) == "" {
		t.Fatal("expected an operator hint")
	}
}

func TestProblemsRequiresLLMKey(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"problems", "6-006"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error from preflight, got %v", err)
	}
}

func TestDownloadRequiresSlug(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"download"}, env.configPath); err == nil {
		t.Fatal("expected an argument error")
	}
}
