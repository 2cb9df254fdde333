package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalService = errors.New("external service error")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrNotFound        = errors.New("not found")
	ErrTimeout         = errors.New("timeout")
	ErrTransient       = errors.New("transient failure")
	ErrPersistence     = errors.New("persistence error")
	ErrLocked          = errors.New("run already in progress")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err must stop a course run. Transient and timeout
// failures are scoped to a single item and never abort on their own.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrTransient):
		return false
	default:
		return true
	}
}

// Hint returns an operator-facing suggestion for the marker carried by err.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "run `ocwsync catalog sync` or check the course slug"
	case errors.Is(err, ErrConfiguration):
		return "run `ocwsync config validate`"
	case errors.Is(err, ErrLocked):
		return "wait for the other run for this course to finish"
	case errors.Is(err, ErrPersistence):
		return "check database connectivity and store settings"
	case errors.Is(err, ErrExternalService), errors.Is(err, ErrTimeout):
		return "check network access to the upstream service"
	default:
		return ""
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
