package lectures_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ocwsync/internal/content"
	"ocwsync/internal/lectures"
	"ocwsync/internal/ocwsite"
	"ocwsync/internal/store"
	"ocwsync/internal/testsupport"
)

const galleryHTML = `<html><body>
<a href="/courses/algo/resources/lecture-1-intro/">
  <img src="https://img.youtube.com/vi/ZA-tUyM_y7s/default.jpg"><h5>Lecture 1: Introduction</h5>
</a>
<a href="/courses/algo/resources/lecture-1-intro/"><h5>Lecture 1: Introduction (dup)</h5></a>
<a href="/courses/algo/resources/lecture-2-ds"><img src="https://img.youtube.com/vi/CHhwJjR0mZA/default.jpg"><h5>Lecture 2: Data Structures</h5></a>
<a href="/courses/algo/resources/recitation-1/"><h5>Recitation 1</h5></a>
<a href="/courses/algo/pages/syllabus/">Syllabus</a>
</body></html>`

func TestParseGallery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(galleryHTML))
	}))
	defer srv.Close()
	doc, _, err := ocwsite.New(ocwsite.Config{}).Document(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	got := lectures.ParseGallery(doc)
	if len(got) != 3 {
		t.Fatalf("expected 3 lectures, got %d: %+v", len(got), got)
	}
	if got[0].Slug != "lecture-1-intro" || got[0].VideoID == nil || *got[0].VideoID != "ZA-tUyM_y7s" {
		t.Fatalf("unexpected first lecture %+v", got[0])
	}
	if got[0].LectureNumber == nil || *got[0].LectureNumber != 1 {
		t.Fatalf("expected lecture number 1, got %v", got[0].LectureNumber)
	}
	if got[2].VideoID != nil || got[2].LectureNumber != nil {
		t.Fatalf("recitation should have no video id or number: %+v", got[2])
	}
}

func TestPatterns(t *testing.T) {
	for _, src := range []string{
		"https://www.youtube.com/embed/ZA-tUyM_y7s?rel=0",
		"https://www.youtube.com/watch?v=ZA-tUyM_y7s",
		"https://youtu.be/ZA-tUyM_y7s",
	} {
		if id, ok := lectures.EmbedVideoID(src); !ok || id != "ZA-tUyM_y7s" {
			t.Fatalf("EmbedVideoID(%q) = %q, %v", src, id, ok)
		}
	}
	if _, ok := lectures.EmbedVideoID("https://vimeo.com/123"); ok {
		t.Fatal("vimeo should not match")
	}
	html := []byte(`<a href="https://archive.org/download/MIT6006S20/lec1.mp4">mp4</a>`)
	if url, ok := lectures.ArchiveURL(html); !ok || url != "https://archive.org/download/MIT6006S20/lec1.mp4" {
		t.Fatalf("ArchiveURL = %q, %v", url, ok)
	}
	if n := lectures.LectureNumber("LECTURE   12: Graphs"); n == nil || *n != 12 {
		t.Fatalf("LectureNumber = %v", n)
	}
	if lectures.LectureNumber("Quiz 1 Review") != nil {
		t.Fatal("expected nil lecture number")
	}
}

func newCourseServer(t *testing.T, galleryStatus int, resourceHits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/courses/algo/video_galleries/lecture-videos/", func(w http.ResponseWriter, r *http.Request) {
		if galleryStatus != http.StatusOK {
			w.WriteHeader(galleryStatus)
			return
		}
		_, _ = w.Write([]byte(galleryHTML))
	})
	mux.HandleFunc("/courses/algo/resources/lecture-1-intro/", func(w http.ResponseWriter, r *http.Request) {
		resourceHits.Add(1)
		_, _ = w.Write([]byte(`<video src="https://archive.org/download/algo/lec01.mp4"></video>`))
	})
	mux.HandleFunc("/courses/algo/resources/lecture-2-ds/", func(w http.ResponseWriter, r *http.Request) {
		resourceHits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDiscoverFromGalleryWritesCache(t *testing.T) {
	var hits atomic.Int32
	srv := newCourseServer(t, http.StatusOK, &hits)
	cfg := testsupport.NewConfig(t)
	d := lectures.NewDiscoverer(cfg, ocwsite.New(ocwsite.Config{}), nil)
	course := &store.Course{ID: 1, URL: srv.URL + "/courses/algo/"}

	result, err := d.Discover(context.Background(), course, "algo", t.TempDir(), false)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if result.Source != lectures.SourceGallery || len(result.Lectures) != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Lectures[0].ArchiveURL == nil || *result.Lectures[0].ArchiveURL != "https://archive.org/download/algo/lec01.mp4" {
		t.Fatalf("archive url missing: %+v", result.Lectures[0])
	}
	if result.Lectures[1].ArchiveURL != nil {
		t.Fatal("failed resource page must leave archive url nil")
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 resource lookups, got %d", hits.Load())
	}

	cached, ok, err := lectures.LoadCache(cfg.LectureCachePath("algo"))
	if err != nil || !ok || len(cached) != 3 {
		t.Fatalf("cache not written: ok=%v err=%v len=%d", ok, err, len(cached))
	}

	// Second run is served from cache without network calls.
	srv.Close()
	again, err := d.Discover(context.Background(), course, "algo", t.TempDir(), false)
	if err != nil {
		t.Fatalf("Discover from cache: %v", err)
	}
	if again.Source != lectures.SourceCache || len(again.Lectures) != 3 {
		t.Fatalf("unexpected cached result %+v", again)
	}
}

func TestDiscoverFallsBackToArchiveScan(t *testing.T) {
	var hits atomic.Int32
	srv := newCourseServer(t, http.StatusNotFound, &hits)
	cfg := testsupport.NewConfig(t)
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"resources/lec-a.html": `<h1>Lecture 3: Heaps</h1><iframe src="https://www.youtube.com/embed/AAAAAAAAAAA"></iframe>
<a href="https://archive.org/download/algo/lec03.mp4">mirror</a>`,
		"resources/lec-b.html": `<h2>Bonus</h2><iframe src="https://youtu.be/BBBBBBBBBBB"></iframe>`,
		"resources/lec-c.html": `<iframe src="https://www.youtube.com/embed/AAAAAAAAAAA"></iframe>`,
		"pages/blank.html":     `<iframe src="https://youtube.com/watch?v=CCCCCCCCCCC"></iframe>`,
	})
	d := lectures.NewDiscoverer(cfg, ocwsite.New(ocwsite.Config{}), nil)

	result, err := d.Discover(context.Background(), &store.Course{URL: srv.URL + "/courses/algo"}, "algo", root, false)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if result.Source != lectures.SourceArchive {
		t.Fatalf("expected archive scan, got %s", result.Source)
	}
	want := []content.LectureCandidate{
		{Title: "Video 1", Slug: "blank"},
		{Title: "Lecture 3: Heaps", Slug: "lec-a"},
		{Title: "Bonus", Slug: "lec-b"},
	}
	if len(result.Lectures) != len(want) {
		t.Fatalf("expected %d lectures, got %+v", len(want), result.Lectures)
	}
	for i, w := range want {
		got := result.Lectures[i]
		if got.Title != w.Title || got.Slug != w.Slug {
			t.Fatalf("lecture %d = %+v, want %+v", i, got, w)
		}
	}
	if result.Lectures[1].ArchiveURL == nil || result.Lectures[1].LectureNumber == nil || *result.Lectures[1].LectureNumber != 3 {
		t.Fatalf("unexpected scanned lecture %+v", result.Lectures[1])
	}
	if hits.Load() != 0 {
		t.Fatal("archive scan must not fetch resource pages")
	}
}

func TestDiscoverRefreshIgnoresCache(t *testing.T) {
	var hits atomic.Int32
	srv := newCourseServer(t, http.StatusOK, &hits)
	cfg := testsupport.NewConfig(t)
	cachePath := cfg.LectureCachePath("algo")
	if err := lectures.SaveCache(cachePath, []content.LectureCandidate{{Title: "Stale", Slug: "stale"}}); err != nil {
		t.Fatal(err)
	}
	d := lectures.NewDiscoverer(cfg, ocwsite.New(ocwsite.Config{}), nil)

	result, err := d.Discover(context.Background(), &store.Course{URL: srv.URL + "/courses/algo/"}, "algo", t.TempDir(), true)
	if err != nil {
		t.Fatal(err)
	}
	if result.Source != lectures.SourceGallery || result.Lectures[0].Title == "Stale" {
		t.Fatalf("refresh should rediscover, got %+v", result)
	}
	data, _ := os.ReadFile(filepath.Clean(cachePath))
	if len(data) == 0 {
		t.Fatal("cache should be rewritten")
	}
}

func TestDiscoverSpacesResourcePageRequests(t *testing.T) {
	const delay = 40 * time.Millisecond
	// The first request's transit time can eat into the measured gap.
	const slack = 5 * time.Millisecond

	var mu sync.Mutex
	var arrivals []time.Time
	record := func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte(`<video src="https://archive.org/download/algo/lec.mp4"></video>`))
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/courses/algo/video_galleries/lecture-videos/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(galleryHTML))
	})
	mux.HandleFunc("/courses/algo/resources/lecture-1-intro/", record)
	mux.HandleFunc("/courses/algo/resources/lecture-2-ds/", record)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Source.LectureDelayMillis = int(delay / time.Millisecond)
	d := lectures.NewDiscoverer(cfg, ocwsite.New(ocwsite.Config{}), nil)

	start := time.Now()
	if _, err := d.Discover(context.Background(), &store.Course{URL: srv.URL + "/courses/algo/"}, "algo", t.TempDir(), false); err != nil {
		t.Fatalf("Discover: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(arrivals) != 2 {
		t.Fatalf("expected 2 resource page requests, got %d", len(arrivals))
	}
	if since := arrivals[1].Sub(start); since < delay {
		t.Fatalf("second request %v after start, want at least %v", since, delay)
	}
	for i := 1; i < len(arrivals); i++ {
		if gap := arrivals[i].Sub(arrivals[i-1]); gap < delay-slack {
			t.Fatalf("requests %d and %d were %v apart, want at least %v", i-1, i, gap, delay)
		}
	}
}

func TestDiscoverRefreshWithNoLecturesRemovesCache(t *testing.T) {
	var hits atomic.Int32
	srv := newCourseServer(t, http.StatusNotFound, &hits)
	cfg := testsupport.NewConfig(t)
	cachePath := cfg.LectureCachePath("algo")
	if err := lectures.SaveCache(cachePath, []content.LectureCandidate{{Title: "Stale", Slug: "stale"}}); err != nil {
		t.Fatal(err)
	}
	d := lectures.NewDiscoverer(cfg, ocwsite.New(ocwsite.Config{}), nil)

	result, err := d.Discover(context.Background(), &store.Course{URL: srv.URL + "/courses/algo/"}, "algo", t.TempDir(), true)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(result.Lectures) != 0 {
		t.Fatalf("expected no lectures, got %+v", result.Lectures)
	}
	if _, ok, err := lectures.LoadCache(cachePath); err != nil || ok {
		t.Fatalf("stale cache should be removed: ok=%v err=%v", ok, err)
	}

	again, err := d.Discover(context.Background(), &store.Course{URL: srv.URL + "/courses/algo/"}, "algo", t.TempDir(), false)
	if err != nil {
		t.Fatalf("Discover without refresh: %v", err)
	}
	if again.Source == lectures.SourceCache {
		t.Fatal("next run must not serve the removed cache")
	}
}
