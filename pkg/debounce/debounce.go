// Package debounce provides a timer-based debouncer for interactive input,
// such as search-as-you-type against the catalog API.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the reference delay used by the storefront search box.
const DefaultDelay = 300 * time.Millisecond

// Debouncer coalesces rapid calls: only the last function passed to Do within
// a delay window runs, on its own goroutine, once the input goes quiet.
// The zero value is not usable; construct with New.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a Debouncer with the given delay. A non-positive delay falls
// back to DefaultDelay.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Do schedules fn to run after the delay, cancelling any previously scheduled
// call that has not fired yet.
func (d *Debouncer) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending call. It does not wait for a call that has already
// started.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
