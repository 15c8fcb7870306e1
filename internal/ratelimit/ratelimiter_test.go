package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiter(60, 3)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		assert.NoError(t, rl.Allow("192.0.2.1"))
	}
	err := rl.Allow("192.0.2.1")
	assert.EqualError(t, err, "rate limit exceeded. Maximum 60 requests per minute")

	// other clients have their own bucket
	assert.NoError(t, rl.Allow("192.0.2.2"))
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	defer rl.Close()

	assert.NoError(t, rl.Allow("192.0.2.1"))
	assert.Error(t, rl.Allow("192.0.2.1"))

	rl.evictIdle(time.Now().Add(5 * time.Minute))

	rl.mu.Lock()
	assert.Empty(t, rl.clients)
	rl.mu.Unlock()

	assert.NoError(t, rl.Allow("192.0.2.1"))
}
