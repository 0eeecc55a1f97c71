package services

import (
	"time"
)

// RateLimiter allows at most limit events per window. The window starts with the first
// event and the counter resets once it has elapsed.
type RateLimiter struct {
	limit       int
	window      time.Duration
	windowStart time.Time
	count       int
	now         func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{limit: limit, window: window, now: time.Now}
}

func (rl *RateLimiter) Allow() bool {
	now := rl.now()
	if rl.windowStart.IsZero() || now.Sub(rl.windowStart) >= rl.window {
		rl.windowStart = now
		rl.count = 0
	}
	if rl.count >= rl.limit {
		return false
	}
	rl.count++
	return true
}

// Remaining returns how many events the current window still accepts
func (rl *RateLimiter) Remaining() int {
	if rl.windowStart.IsZero() || rl.now().Sub(rl.windowStart) >= rl.window {
		return rl.limit
	}
	return rl.limit - rl.count
}
