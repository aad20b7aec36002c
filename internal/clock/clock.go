// Package clock abstracts time and timer scheduling so the debounce window
// and the simulated checkout latency can be driven deterministically in
// tests. Production code uses System; tests use testutil.ManualClock.
package clock

import "time"

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop cancels the timer. Returns false if it already fired or was
	// already stopped.
	Stop() bool
}

// Clock provides wall time and one-shot timer scheduling.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc schedules fn to run once after d elapses. fn runs on its
	// own goroutine for the system clock; callers must do their own
	// locking inside fn.
	AfterFunc(d time.Duration, fn func()) Timer
}

// System is the real clock backed by the time package.
type System struct{}

// NewSystem returns the production clock.
func NewSystem() System {
	return System{}
}

// Now returns time.Now().
func (System) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc.
func (System) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
