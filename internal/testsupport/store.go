package testsupport

import (
	"context"
	"testing"

	"ocwsync/internal/config"
	"ocwsync/internal/store"
)

// MustOpenStore opens the configured store and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// SeedCourse inserts a catalog row and returns it.
func SeedCourse(t testing.TB, s *store.Store, id int64, title, url string) store.Course {
	t.Helper()

	course := store.Course{ID: id, ReadableID: title, Title: title, URL: url}
	if err := s.UpsertCourses(context.Background(), []store.Course{course}); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return course
}
