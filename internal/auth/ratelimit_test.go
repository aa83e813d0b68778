package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
		CleanupInterval: time.Hour,
	})
}

func TestRateLimiter_LockoutAfterMaxFailures(t *testing.T) {
	rl := newTestLimiter()
	defer rl.Stop()

	allowed, _ := rl.Allow("1.2.3.4", "alice@example.com")
	assert.True(t, allowed)

	rl.RecordFailure("1.2.3.4", "alice@example.com")
	rl.RecordFailure("1.2.3.4", "alice@example.com")

	allowed, _ = rl.Allow("1.2.3.4", "alice@example.com")
	assert.True(t, allowed, "still under the limit")

	locked, retryAfter := rl.RecordFailure("1.2.3.4", "alice@example.com")
	assert.True(t, locked)
	assert.Equal(t, time.Minute, retryAfter)

	allowed, retryAfter = rl.Allow("1.2.3.4", "alice@example.com")
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := newTestLimiter()
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		rl.RecordFailure("1.2.3.4", "alice@example.com")
	}

	allowed, _ := rl.Allow("1.2.3.4", "alice@example.com")
	assert.False(t, allowed)

	t.Run("different ip", func(t *testing.T) {
		allowed, _ := rl.Allow("5.6.7.8", "alice@example.com")
		assert.True(t, allowed)
	})

	t.Run("different email", func(t *testing.T) {
		allowed, _ := rl.Allow("1.2.3.4", "bob@example.com")
		assert.True(t, allowed)
	})
}

func TestRateLimiter_SuccessClearsRecord(t *testing.T) {
	rl := newTestLimiter()
	defer rl.Stop()

	rl.RecordFailure("1.2.3.4", "alice@example.com")
	rl.RecordFailure("1.2.3.4", "alice@example.com")

	rl.RecordSuccess("1.2.3.4", "alice@example.com")

	rl.RecordFailure("1.2.3.4", "alice@example.com")
	rl.RecordFailure("1.2.3.4", "alice@example.com")

	allowed, _ := rl.Allow("1.2.3.4", "alice@example.com")
	assert.True(t, allowed, "counter restarted after success")
}
