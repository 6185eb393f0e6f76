// Package ratelimit bounds outbound relay calls with a sliding time window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter admits at most a fixed number of calls per key within any rolling window.
type Limiter interface {
	// Allow records a call for key when the window has room. When it does not,
	// it returns false and how long until the oldest call leaves the window.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// SlidingWindow is a process-local Limiter keeping call timestamps per key.
type SlidingWindow struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	calls map[string][]time.Time
}

// NewSlidingWindow creates a limiter admitting limit calls per window.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:  limit,
		window: window,
		now:    time.Now,
		calls:  make(map[string][]time.Time),
	}
}

func (s *SlidingWindow) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	calls := s.calls[key]

	// drop timestamps that have left the window
	kept := calls[:0]
	for _, ts := range calls {
		if now.Sub(ts) < s.window {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= s.limit {
		s.calls[key] = kept
		return false, kept[0].Add(s.window).Sub(now), nil
	}

	s.calls[key] = append(kept, now)
	return true, 0, nil
}
