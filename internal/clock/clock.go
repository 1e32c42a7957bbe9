// Package clock provides an injectable time source so that TTL expiry and
// calendar arithmetic can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Real returns a Clock backed by time.Now.
func Real() Clock { return realClock{} }

// FakeClock is a Clock whose time only moves when Advance or Set is called.
// It is safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
}

// Fake returns a FakeClock frozen at initial.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()
}

// Set jumps the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}
