package testutil

import (
	"sync"
	"time"
)

// TickingClock is a deterministic wall-clock source: each Now() call
// returns the current instant and advances by a fixed step. Record
// timestamps become a function of call order alone.
//
// Thread-safety: all methods are safe for concurrent use.
type TickingClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

// NewTickingClock creates a clock starting at base, advancing by step
// per Now() call.
func NewTickingClock(base time.Time, step time.Duration) *TickingClock {
	return &TickingClock{t: base, step: step}
}

// Now returns the current instant and ticks forward.
func (c *TickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}

// Current returns the next instant Now() would return, without ticking.
func (c *TickingClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}
