// Package testutil provides deterministic test doubles shared across
// packages: a manually advanced clock and canned catalog fixtures.
package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/roach88/merch/internal/clock"
)

// ManualClock is a clock.Clock whose time only moves when the test calls
// Advance. Timers scheduled via AfterFunc fire synchronously inside
// Advance, in deadline order, on the calling goroutine.
//
// This makes debounce windows and simulated latencies fully deterministic:
// the test controls exactly when each suspension point resumes.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

// NewManualClock creates a manual clock starting at a fixed epoch.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Unix(1700000000, 0).UTC()}
}

// NewManualClockAt creates a manual clock starting at t.
func NewManualClockAt(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc registers fn to fire when the clock has advanced past d.
func (c *ManualClock) AfterFunc(d time.Duration, fn func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTimer{
		clock:    c,
		deadline: c.now.Add(d),
		fn:       fn,
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every due timer in deadline
// order. Timers scheduled by a firing callback are honored within the same
// Advance call if their deadline has already passed.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()

	for {
		t := c.popDue()
		if t == nil {
			return
		}
		t.fn()
	}
}

// popDue removes and returns the earliest due, unstopped timer, or nil.
func (c *ManualClock) popDue() *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	sort.SliceStable(c.timers, func(i, j int) bool {
		return c.timers[i].deadline.Before(c.timers[j].deadline)
	})
	for i, t := range c.timers {
		if t.stopped || t.deadline.After(c.now) {
			continue
		}
		c.timers = append(c.timers[:i], c.timers[i+1:]...)
		return t
	}
	return nil
}

// Pending returns the number of scheduled, unfired timers.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type manualTimer struct {
	clock    *ManualClock
	deadline time.Time
	fn       func()
	stopped  bool
}

// Stop cancels the timer. Returns false if already fired or stopped.
func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped {
		return false
	}
	for i, pending := range t.clock.timers {
		if pending == t {
			t.clock.timers = append(t.clock.timers[:i], t.clock.timers[i+1:]...)
			t.stopped = true
			return true
		}
	}
	// Already fired (removed by popDue).
	t.stopped = true
	return false
}
