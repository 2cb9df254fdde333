package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"ocwsync/internal/config"
	"ocwsync/internal/lectures"
	"ocwsync/internal/pipeline"
	"ocwsync/internal/runlock"
	"ocwsync/internal/services"
	"ocwsync/internal/store"
	"ocwsync/internal/testsupport"
)

const lecturePage = `<html><body><h1>Lecture 1: Introduction</h1>
<iframe src="https://www.youtube.com/embed/ZA-tUyM_y7s"></iframe></body></html>`

func courseArchive(t *testing.T) []byte {
	t.Helper()
	return testsupport.ZipBytes(t, map[string]string{
		"algo/index.html":                            "<html><body><nav>Syllabus</nav></body></html>",
		"algo/pages/lecture-1-intro.html":            lecturePage,
		"algo/static_resources/mit6_006_ps1.pdf":     string(testsupport.MinimalPDF("Problem 1 prove it")),
		"algo/static_resources/mit6_006_ps1_sol.pdf": string(testsupport.MinimalPDF("Solution 1 done")),
	})
}

func newCourseServer(t *testing.T) *httptest.Server {
	t.Helper()
	zip := courseArchive(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/courses/algo/download", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><a href="/files/algo.zip">Download</a></body></html>`))
	})
	mux.HandleFunc("/files/algo.zip", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(zip)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newOracleServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setup(t *testing.T, opts ...testsupport.ConfigOption) (*config.Config, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	s := testsupport.MustOpenStore(t, cfg)
	return cfg, s
}

func TestDownloadThenProblems(t *testing.T) {
	site := newCourseServer(t)
	oracle := newOracleServer(t, `[{"problem_label":"Problem 1","question_text":"Prove it.","solution_text":"Done.","ordering":0}]`)
	cfg, s := setup(t, testsupport.WithLLM(oracle.URL, ""))
	testsupport.SeedCourse(t, s, 11, "Algorithms", site.URL+"/courses/algo")

	runner := pipeline.NewRunner(cfg, s, nil, pipeline.WithPageCounter(func(string) (int, error) { return 1, nil }))
	summary, err := runner.Download(context.Background(), "algo", pipeline.DownloadOptions{})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if summary.RunID == "" || summary.Course.ID != 11 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Lectures != 1 || summary.LectureSource != lectures.SourceArchive {
		t.Fatalf("expected one lecture from the archive scan, got %d from %s", summary.Lectures, summary.LectureSource)
	}
	if summary.Pdfs != 2 || summary.Strategy != "fallback" || summary.Degraded {
		t.Fatalf("unexpected classification/ordering %+v", summary)
	}
	if summary.Content.Sections != 3 || summary.Content.Videos != 1 || summary.Content.Pdfs != 2 {
		t.Fatalf("unexpected content %+v", summary.Content)
	}
	if _, err := os.Stat(summary.ScratchDir); !os.IsNotExist(err) {
		t.Fatalf("scratch should be removed, stat err %v", err)
	}
	if _, err := os.Stat(cfg.LectureCachePath("algo")); err != nil {
		t.Fatalf("lecture cache not written: %v", err)
	}

	cfg.LLM.APIKey = "test-key"
	problemsSummary, err := runner.Problems(context.Background(), "algo")
	if err != nil {
		t.Fatalf("Problems: %v", err)
	}
	if problemsSummary.Converter != "local" {
		t.Fatalf("expected local converter, got %s", problemsSummary.Converter)
	}
	result := problemsSummary.Result
	if result.Groups != 1 || result.Paired != 1 || result.Problems != 1 {
		t.Fatalf("unexpected problems result %+v", result)
	}
	resources, err := s.ListResources(context.Background(), 11, store.ResourceProblemSet)
	if err != nil || len(resources) != 1 {
		t.Fatalf("expected one problem set, got %+v, %v", resources, err)
	}
	got, err := s.ListProblems(context.Background(), resources[0].ID)
	if err != nil || len(got) != 1 || got[0].SolutionText == nil {
		t.Fatalf("expected stored problem with solution, got %+v, %v", got, err)
	}
}

func TestDownloadKeepsScratchOnRequest(t *testing.T) {
	site := newCourseServer(t)
	cfg, s := setup(t)
	testsupport.SeedCourse(t, s, 11, "Algorithms", site.URL+"/courses/algo")

	summary, err := pipeline.NewRunner(cfg, s, nil).Download(context.Background(), "algo", pipeline.DownloadOptions{KeepScratch: true})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if _, err := os.Stat(summary.ScratchDir); err != nil {
		t.Fatalf("scratch should be kept: %v", err)
	}
}

func TestDownloadFailsWhenLocked(t *testing.T) {
	cfg, s := setup(t)
	lock, err := runlock.Acquire(cfg.Paths.LockDir, "algo")
	if err != nil {
		t.Fatal(err)
	}
	defer lock.Release()

	_, err = pipeline.NewRunner(cfg, s, nil).Download(context.Background(), "algo", pipeline.DownloadOptions{})
	if !errors.Is(err, services.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestDownloadUnknownCourse(t *testing.T) {
	cfg, s := setup(t)
	_, err := pipeline.NewRunner(cfg, s, nil).Download(context.Background(), "missing", pipeline.DownloadOptions{})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProblemsRequiresExtractionKey(t *testing.T) {
	cfg, s := setup(t)
	_, err := pipeline.NewRunner(cfg, s, nil).Problems(context.Background(), "algo")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
