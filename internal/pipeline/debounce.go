package pipeline

import (
	"sync"
	"time"
)

// DefaultDebounce is the filter debounce delay.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer runs only the last function scheduled within its delay.
// Each Schedule cancels the pending one and restarts the timer.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer. A non-positive delay uses
// DefaultDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Schedule arranges for fn to run after the delay unless another call
// replaces it first. The returned func cancels this schedule only.
func (d *Debouncer) Schedule(fn func()) (cancel func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A timer that fired while being replaced must not run.
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if gen == d.gen && d.timer != nil {
			d.timer.Stop()
			d.timer = nil
			d.gen++
		}
	}
}

// Pending reports whether a scheduled function has not run yet.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels whatever is pending.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
