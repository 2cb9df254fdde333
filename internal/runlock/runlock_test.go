package runlock_test

import (
	"errors"
	"path/filepath"
	"testing"

	"ocwsync/internal/runlock"
	"ocwsync/internal/services"
)

func TestAcquireIsExclusivePerCourse(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "locks")

	first, err := runlock.Acquire(dir, "algo")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if first.Path() != filepath.Join(dir, "algo.lock") {
		t.Fatalf("unexpected lock path %s", first.Path())
	}
	if _, err := runlock.Acquire(dir, "algo"); !errors.Is(err, services.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	other, err := runlock.Acquire(dir, "calculus")
	if err != nil {
		t.Fatalf("other course should lock independently: %v", err)
	}
	defer other.Release()

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := runlock.Acquire(dir, "algo")
	if err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
	_ = again.Release()
}

func TestAcquireSanitizesSlug(t *testing.T) {
	dir := t.TempDir()

	lock, err := runlock.Acquire(dir, "Courses/6.006 Spring")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()
	if want := filepath.Join(dir, "courses_6_006_spring.lock"); lock.Path() != want {
		t.Fatalf("lock path = %s, want %s", lock.Path(), want)
	}
}
