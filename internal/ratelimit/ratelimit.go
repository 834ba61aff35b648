package ratelimit

import (
	"sync"
	"time"
)

// Limiter implements a token bucket rate limiter per client key.
// Keys use the default requests-per-minute limit unless SetLimit overrides it.
type Limiter struct {
	mu      sync.Mutex
	rpm     int
	limits  map[string]int
	buckets map[string]*tokenBucket
	now     func() time.Time
}

type tokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// New creates a limiter allowing rpm requests per minute per key.
// rpm <= 0 disables limiting for keys without a SetLimit override.
func New(rpm int) *Limiter {
	return &Limiter{
		rpm:     rpm,
		limits:  make(map[string]int),
		buckets: make(map[string]*tokenBucket),
		now:     time.Now,
	}
}

// Burst is the bucket size for a given rpm: ~10 seconds worth, at least 10.
func Burst(rpm int) float64 {
	maxTokens := float64(rpm) / 6
	if maxTokens < 10 {
		maxTokens = 10
	}
	return maxTokens
}

// SetLimit overrides the limit for key in requests per minute and refills
// its bucket. rpm <= 0 exempts the key.
func (l *Limiter) SetLimit(key string, rpm int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.limits[key] = rpm
	delete(l.buckets, key)
	if rpm > 0 {
		l.buckets[key] = newBucket(rpm, l.now())
	}
}

// Limit returns the requests-per-minute limit that applies to key.
func (l *Limiter) Limit(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limitFor(key)
}

// Allow checks if a request is allowed for key.
// Returns true if allowed, false if rate limited
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	rpm := l.limitFor(key)
	if rpm <= 0 {
		return true
	}

	now := l.now()
	bucket, exists := l.buckets[key]
	if !exists {
		bucket = newBucket(rpm, now)
		l.buckets[key] = bucket
	}

	// Refill tokens based on time elapsed
	elapsed := now.Sub(bucket.lastRefill).Seconds()
	bucket.tokens += elapsed * bucket.refillRate
	if bucket.tokens > bucket.maxTokens {
		bucket.tokens = bucket.maxTokens
	}
	bucket.lastRefill = now

	if bucket.tokens >= 1 {
		bucket.tokens--
		return true
	}

	return false
}

// Remaining returns the current token count for key (for metrics and
// response headers). -1 means no limit applies.
func (l *Limiter) Remaining(key string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	rpm := l.limitFor(key)
	if rpm <= 0 {
		return -1
	}
	bucket, exists := l.buckets[key]
	if !exists {
		return Burst(rpm)
	}
	return bucket.tokens
}

// Prune drops buckets idle for longer than maxIdle and returns how many went.
func (l *Limiter) Prune(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, bucket := range l.buckets {
		if now.Sub(bucket.lastRefill) > maxIdle {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

func (l *Limiter) limitFor(key string) int {
	if rpm, ok := l.limits[key]; ok {
		return rpm
	}
	return l.rpm
}

func newBucket(rpm int, now time.Time) *tokenBucket {
	return &tokenBucket{
		tokens:     Burst(rpm),
		maxTokens:  Burst(rpm),
		refillRate: float64(rpm) / 60.0, // tokens per second
		lastRefill: now,
	}
}
