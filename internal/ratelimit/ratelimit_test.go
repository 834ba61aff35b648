package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(rpm int) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := New(rpm)
	l.now = clock.now
	return l, clock
}

func TestBurst(t *testing.T) {
	assert.Equal(t, 10.0, Burst(6))
	assert.Equal(t, 10.0, Burst(60))
	assert.Equal(t, 20.0, Burst(120))
}

func TestAllowBurstThenLimit(t *testing.T) {
	l, _ := newTestLimiter(60)

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("a"), "request %d", i)
	}
	assert.False(t, l.Allow("a"))

	// other keys have their own bucket
	assert.True(t, l.Allow("b"))
}

func TestAllowRefills(t *testing.T) {
	l, clock := newTestLimiter(60)

	for l.Allow("a") {
	}
	clock.advance(time.Second)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	// refill is capped at the burst size
	clock.advance(time.Hour)
	assert.True(t, l.Allow("a"))
	assert.InDelta(t, 9.0, l.Remaining("a"), 0.001)
}

func TestDisabled(t *testing.T) {
	l := New(0)
	for i := 0; i < 1000; i++ {
		assert.True(t, l.Allow("a"))
	}
	assert.Equal(t, -1.0, l.Remaining("a"))
}

func TestRemainingUnknownKey(t *testing.T) {
	l, _ := newTestLimiter(120)
	assert.Equal(t, 20.0, l.Remaining("nobody"))
}

func TestPrune(t *testing.T) {
	l, clock := newTestLimiter(60)
	l.Allow("a")
	clock.advance(2 * time.Minute)
	l.Allow("b")

	assert.Equal(t, 1, l.Prune(time.Minute))
	assert.Equal(t, 10.0, l.Remaining("a"))
	assert.Less(t, l.Remaining("b"), 10.0)
}

func TestSetLimitOverridesKey(t *testing.T) {
	l, clock := newTestLimiter(60)

	l.SetLimit("vip", 1200)
	assert.Equal(t, 1200, l.Limit("vip"))
	assert.Equal(t, 60, l.Limit("anyone"))
	assert.Equal(t, 200.0, l.Remaining("vip"))

	for i := 0; i < 200; i++ {
		assert.True(t, l.Allow("vip"), "request %d", i)
	}
	assert.False(t, l.Allow("vip"))

	// 1200 rpm refills 20 tokens a second
	clock.advance(time.Second)
	assert.InDelta(t, 0, l.Remaining("vip"), 1)
	assert.True(t, l.Allow("vip"))
	assert.InDelta(t, 19.0, l.Remaining("vip"), 0.001)
}

func TestSetLimitExemptsKey(t *testing.T) {
	l, _ := newTestLimiter(60)
	l.SetLimit("monitor", 0)

	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("monitor"))
	}
	assert.Equal(t, -1.0, l.Remaining("monitor"))
}

func TestSetLimitOnDisabledLimiter(t *testing.T) {
	l, _ := newTestLimiter(0)
	l.SetLimit("abuser", 6)

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("abuser"))
	}
	assert.False(t, l.Allow("abuser"))
	assert.True(t, l.Allow("someone-else"))
}
