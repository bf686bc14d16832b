package services

import (
	"log/slog"
	"sync"
	"time"
)

// RateLimitConfig holds configuration for the fixed-window attempt limiter
type RateLimitConfig struct {
	Window      time.Duration // counters reset every window
	MaxAttempts int           // attempts beyond this count within the window are rejected
}

type attemptWindow struct {
	start    time.Time
	failures int
}

// RateLimitService bounds repeated authentication attempts per caller within
// a fixed window. Only failed attempts are recorded, so rapid legitimate
// successes never lock a caller out. Counters live in process memory and are
// not persisted beyond the window.
type RateLimitService struct {
	mu      sync.Mutex
	windows map[string]*attemptWindow
	config  RateLimitConfig
	logger  *slog.Logger
	now     func() time.Time
}

// NewRateLimitService creates a new RateLimitService
func NewRateLimitService(config RateLimitConfig, logger *slog.Logger) *RateLimitService {
	return &RateLimitService{
		windows: make(map[string]*attemptWindow),
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// Allow reports whether the caller identified by key is still under the
// failure threshold for the current window.
func (s *RateLimitService) Allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.currentWindow(key)
	if w.failures >= s.config.MaxAttempts {
		s.logger.Warn("caller rate limited",
			slog.String("key", key),
			slog.Int("failures", w.failures))
		return false
	}
	return true
}

// RecordFailure counts a failed attempt against the caller's current window.
func (s *RateLimitService) RecordFailure(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentWindow(key).failures++
}

// currentWindow returns the caller's window, rolling it over if it has
// lapsed. Caller must hold the mutex.
func (s *RateLimitService) currentWindow(key string) *attemptWindow {
	now := s.now()

	w, ok := s.windows[key]
	if !ok || now.Sub(w.start) >= s.config.Window {
		w = &attemptWindow{start: now}
		s.windows[key] = w
	}
	return w
}

// Prune drops windows that have lapsed. Called periodically by the
// background sweeper so the map does not grow without bound.
func (s *RateLimitService) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	pruned := 0
	for key, w := range s.windows {
		if now.Sub(w.start) >= s.config.Window {
			delete(s.windows, key)
			pruned++
		}
	}
	return pruned
}
