package testutil

import (
	"sync"
	"time"

	"github.com/roach88/temporalq/internal/ir"
)

// DefaultEpoch is the first instant handed out by a DeterministicClock.
var DefaultEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock hands out evenly spaced points in time for seeding
// system-versioned rows and choosing AsOf values.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	n     int64
}

// NewDeterministicClock creates a clock at DefaultEpoch advancing one day
// per tick.
//
// The first call to Next() returns DefaultEpoch + 1 day.
func NewDeterministicClock() *DeterministicClock {
	return NewDeterministicClockAt(DefaultEpoch, 24*time.Hour)
}

// NewDeterministicClockAt creates a clock at start advancing by step.
func NewDeterministicClockAt(start time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{start: start.UTC(), step: step}
}

// Next advances the clock one tick and returns the new instant.
func (c *DeterministicClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.at(c.n)
}

// Current returns the current instant without advancing.
func (c *DeterministicClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at(c.n)
}

// NextValue is Next rendered as a stored timestamp.
func (c *DeterministicClock) NextValue() ir.IRString {
	return ir.NewIRTime(c.Next())
}

// Reset rewinds the clock to its start.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}

func (c *DeterministicClock) at(n int64) time.Time {
	return c.start.Add(time.Duration(n) * c.step)
}
