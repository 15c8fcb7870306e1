package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	mu            sync.Mutex
	clients       map[string]*client
	perMinute     int
	burst         int
	idleAfter     time.Duration
	cleanupTicker *time.Ticker
	done          chan struct{}
}

func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	rl := &RateLimiter{
		clients:   make(map[string]*client),
		perMinute: perMinute,
		burst:     burst,
		idleAfter: 3 * time.Minute,
		done:      make(chan struct{}),
	}

	rl.cleanupTicker = time.NewTicker(time.Minute)
	go rl.cleanup()

	return rl
}

func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.done:
			return
		case now := <-rl.cleanupTicker.C:
			rl.evictIdle(now)
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.idleAfter {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) Allow(key string) error {
	rl.mu.Lock()
	c, ok := rl.clients[key]
	if !ok {
		limit := rate.Every(time.Minute / time.Duration(rl.perMinute))
		c = &client{limiter: rate.NewLimiter(limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = time.Now()
	rl.mu.Unlock()

	if !c.limiter.Allow() {
		return fmt.Errorf("rate limit exceeded. Maximum %d requests per minute", rl.perMinute)
	}
	return nil
}

func (rl *RateLimiter) Close() {
	rl.cleanupTicker.Stop()
	close(rl.done)
}
