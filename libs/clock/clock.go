// Package clock lets time-dependent code take its notion of now as a dependency.
package clock

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

// New returns a Clock backed by time.Now.
func New() Clock {
	return wallClock{}
}

func (wallClock) Now() time.Time {
	return time.Now()
}

// ManagedClock is a hand driven clock for tests.
type ManagedClock struct {
	start  time.Time
	offset time.Duration
}

// NewManaged returns a clock frozen at start until warped.
func NewManaged(start time.Time) *ManagedClock {
	return &ManagedClock{start: start}
}

// Now returns the managed time.
func (c *ManagedClock) Now() time.Time {
	return c.start.Add(c.offset)
}

// WarpForward moves the clock forward by d and returns the new time.
func (c *ManagedClock) WarpForward(d time.Duration) time.Time {
	c.offset += d
	return c.Now()
}
