package engagement

import "sync/atomic"

// Clock is a monotonic logical clock for stamping events and messages.
//
// Every appended record carries a strictly increasing seq from this clock,
// which keeps ordering deterministic under concurrent writers and makes
// "most recent event" well-defined without wall-clock comparisons.
//
// Thread-safety: safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a known position, typically
// MAX(seq) read back from the store at startup.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and advances the clock.
// Each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the clock position without advancing it.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
