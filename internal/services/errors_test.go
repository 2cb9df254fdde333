package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"ocwsync/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalService, "archive", "download", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"archive", "download", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{services.Wrap(services.ErrTimeout, "problems", "poll", "deadline", nil), false},
		{services.Wrap(services.ErrTransient, "lectures", "fetch", "", nil), false},
		{services.Wrap(services.ErrNotFound, "archive", "lookup", "", nil), true},
		{fmt.Errorf("plain: %w", errors.New("x")), true},
	}
	for _, tc := range cases {
		if got := services.IsFatal(tc.err); got != tc.want {
			t.Fatalf("IsFatal(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestHint(t *testing.T) {
	err := services.Wrap(services.ErrNotFound, "archive", "lookup", "no course", nil)
	if hint := services.Hint(err); !strings.Contains(hint, "catalog sync") {
		t.Fatalf("unexpected hint %q", hint)
	}
	if hint := services.Hint(errors.New("other")); hint != "" {
		t.Fatalf("expected empty hint, got %q", hint)
	}
}
