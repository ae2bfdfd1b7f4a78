// Package ratelimit provides a keyed rate limiter using token bucket algorithm.
// It supports non-blocking (Allow, Reserve) and blocking (Wait) operations.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxKeys bounds the number of tracked keys when no cap is given.
const DefaultMaxKeys = 10000

// entry pairs a limiter with the last time its key was seen.
type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter manages per-key rate limiting.
// Each unique key gets its own independent rate limiter. Idle keys are
// evicted once their bucket would have refilled, and the number of tracked
// keys is capped.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	maxKeys  int
	now      func() time.Time

	// Cleanup
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a KeyedRateLimiter.
type Option func(*KeyedRateLimiter)

// WithMaxKeys caps the number of tracked keys. Values <= 0 keep the default.
func WithMaxKeys(n int) Option {
	return func(krl *KeyedRateLimiter) {
		if n > 0 {
			krl.maxKeys = n
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(krl *KeyedRateLimiter) {
		krl.now = now
	}
}

// New creates a new keyed rate limiter.
// rps: requests per second allowed.
// burst: maximum burst size (tokens available immediately).
func New(rps float64, burst int, opts ...Option) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		limiters: make(map[string]*entry),
		limit:    rate.Limit(rps),
		burst:    burst,
		maxKeys:  DefaultMaxKeys,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(krl)
	}

	// A key idle for longer than a full refill is indistinguishable from a new one.
	krl.idleTTL = time.Minute
	if rps > 0 {
		krl.idleTTL = time.Duration(float64(burst) / rps * float64(time.Second))
	}

	go krl.cleanup()

	return krl
}

// NewPerWindow creates a limiter that allows max requests per window for each key.
func NewPerWindow(maxRequests int, window time.Duration, opts ...Option) *KeyedRateLimiter {
	return New(float64(maxRequests)/window.Seconds(), maxRequests, opts...)
}

// Allow checks if a request for the given key should be allowed.
// Returns immediately without blocking. Use for inbound request protection.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	ok, _ := krl.Reserve(key)
	return ok
}

// Reserve consumes a token for key if one is available. When the key is
// exhausted it returns false and how long until the next token.
func (krl *KeyedRateLimiter) Reserve(key string) (bool, time.Duration) {
	now := krl.now()
	limiter := krl.getLimiter(key, now)

	r := limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, krl.idleTTL
	}

	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Wait blocks until a request for the given key is allowed or context is canceled.
// Use for outbound requests where you want to respect rate limits.
func (krl *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return krl.getLimiter(key, krl.now()).Wait(ctx)
}

// Len returns the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	return len(krl.limiters)
}

// getLimiter returns the limiter for a key, creating one if needed.
func (krl *KeyedRateLimiter) getLimiter(key string, now time.Time) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	if e, exists := krl.limiters[key]; exists {
		e.lastSeen = now
		return e.limiter
	}

	if len(krl.limiters) >= krl.maxKeys {
		krl.evictLocked(now)
	}

	e := &entry{limiter: rate.NewLimiter(krl.limit, krl.burst), lastSeen: now}
	krl.limiters[key] = e
	return e.limiter
}

// evictLocked drops idle keys, then the least recently seen key if the map is still full.
func (krl *KeyedRateLimiter) evictLocked(now time.Time) {
	krl.sweepLocked(now)
	if len(krl.limiters) < krl.maxKeys {
		return
	}

	var oldestKey string
	var oldest time.Time
	for k, e := range krl.limiters {
		if oldestKey == "" || e.lastSeen.Before(oldest) {
			oldestKey, oldest = k, e.lastSeen
		}
	}
	delete(krl.limiters, oldestKey)
}

func (krl *KeyedRateLimiter) sweepLocked(now time.Time) {
	for k, e := range krl.limiters {
		if now.Sub(e.lastSeen) >= krl.idleTTL {
			delete(krl.limiters, k)
		}
	}
}

// Sweep removes keys idle for longer than a full bucket refill.
func (krl *KeyedRateLimiter) Sweep() {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	krl.sweepLocked(krl.now())
}

// Stop shuts down the cleanup goroutine.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
}

// Shutdown satisfies do.Shutdowner.
func (krl *KeyedRateLimiter) Shutdown() error {
	krl.Stop()
	return nil
}

func (krl *KeyedRateLimiter) cleanup() {
	interval := krl.idleTTL
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-krl.done:
			return
		case <-ticker.C:
			krl.Sweep()
		}
	}
}
