package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Window caps the number of operations inside a trailing time window. Callers
// that exceed the cap block until the oldest recorded operation leaves the
// window. One Window is meant to be shared by every caller that draws on the
// same upstream quota.
type Window struct {
	mu     sync.Mutex
	limit  int
	period time.Duration
	clock  Clock
	stamps []time.Time
}

// Option customizes a Window.
type Option func(*Window)

// WithClock substitutes the time source.
func WithClock(clock Clock) Option {
	return func(w *Window) {
		if clock != nil {
			w.clock = clock
		}
	}
}

// NewWindow returns a limiter admitting limit operations per period.
func NewWindow(limit int, period time.Duration, opts ...Option) (*Window, error) {
	if limit <= 0 {
		return nil, errors.New("ratelimit: limit must be positive")
	}
	if period <= 0 {
		return nil, errors.New("ratelimit: period must be positive")
	}
	w := &Window{limit: limit, period: period, clock: SystemClock{}}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Wait blocks until an operation may proceed and records it. It returns the
// total time spent waiting.
func (w *Window) Wait(ctx context.Context) (time.Duration, error) {
	var waited time.Duration
	for {
		w.mu.Lock()
		now := w.clock.Now()
		w.prune(now)
		if len(w.stamps) < w.limit {
			w.stamps = append(w.stamps, now)
			w.mu.Unlock()
			return waited, nil
		}
		delay := w.stamps[0].Add(w.period).Sub(now)
		w.mu.Unlock()

		if err := w.clock.Sleep(ctx, delay); err != nil {
			return waited, err
		}
		waited += delay
	}
}

// InFlight reports how many operations are currently counted in the window.
func (w *Window) InFlight() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(w.clock.Now())
	return len(w.stamps)
}

// prune drops timestamps that have left the window. Callers hold mu.
func (w *Window) prune(now time.Time) {
	cutoff := now.Add(-w.period)
	keep := 0
	for keep < len(w.stamps) && !w.stamps[keep].After(cutoff) {
		keep++
	}
	if keep > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[keep:]...)
	}
}
