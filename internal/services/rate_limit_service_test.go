package services

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(window time.Duration, max int) (*RateLimitService, *time.Time) {
	now := time.Now()
	s := NewRateLimitService(RateLimitConfig{Window: window, MaxAttempts: max}, slog.Default())
	s.now = func() time.Time { return now }
	return s, &now
}

func TestRateLimit_AllowsUnderThreshold(t *testing.T) {
	s, _ := newTestLimiter(15*time.Minute, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, s.Allow("203.0.113.7"))
		s.RecordFailure("203.0.113.7")
	}

	assert.False(t, s.Allow("203.0.113.7"))
}

func TestRateLimit_SuccessesDoNotCount(t *testing.T) {
	s, _ := newTestLimiter(15*time.Minute, 3)

	// Only failures are recorded; any number of Allow calls without a
	// recorded failure keeps the caller under the threshold.
	for i := 0; i < 10; i++ {
		assert.True(t, s.Allow("203.0.113.7"))
	}
}

func TestRateLimit_KeysAreIndependent(t *testing.T) {
	s, _ := newTestLimiter(15*time.Minute, 3)

	for i := 0; i < 3; i++ {
		s.RecordFailure("203.0.113.7")
	}

	assert.False(t, s.Allow("203.0.113.7"))
	assert.True(t, s.Allow("198.51.100.1"))
}

func TestRateLimit_WindowRollover(t *testing.T) {
	s, now := newTestLimiter(15*time.Minute, 3)

	for i := 0; i < 3; i++ {
		s.RecordFailure("203.0.113.7")
	}
	assert.False(t, s.Allow("203.0.113.7"))

	*now = now.Add(15*time.Minute + time.Second)
	assert.True(t, s.Allow("203.0.113.7"))
}

func TestRateLimit_Prune(t *testing.T) {
	s, now := newTestLimiter(15*time.Minute, 3)

	s.RecordFailure("203.0.113.7")
	s.RecordFailure("198.51.100.1")

	assert.Equal(t, 0, s.Prune())

	*now = now.Add(16 * time.Minute)
	assert.Equal(t, 2, s.Prune())
}
