package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterDropsSixthSignalWithinAMinute(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(5, time.Minute)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow(), "signal %d", i+1)
		now = now.Add(5 * time.Second)
	}
	assert.False(t, limiter.Allow())
	assert.Equal(t, 0, limiter.Remaining())

	now = time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 5, limiter.Remaining())
	assert.True(t, limiter.Allow())
	assert.Equal(t, 4, limiter.Remaining())
}
