// Package debounce delays a call until its input has been quiet for a while.
package debounce

import (
	"sync"
	"time"
)

// timer is the part of *time.Timer the debouncer needs.
type timer interface {
	Stop() bool
}

// afterFunc schedules f after d. Tests replace it with a manual clock.
type afterFunc func(d time.Duration, f func()) timer

func realAfterFunc(d time.Duration, f func()) timer { return time.AfterFunc(d, f) }

// Func wraps fn so that a burst of Calls results in a single trailing
// invocation with the last argument. Each Func owns its timer; instances share
// no state.
type Func[T any] struct {
	wait  time.Duration
	fn    func(T)
	after afterFunc

	mu      sync.Mutex
	timer   timer
	gen     uint64
	pending bool
	arg     T
	stopped bool
}

// New returns a debounced wrapper around fn.
func New[T any](wait time.Duration, fn func(T)) *Func[T] {
	return newWithClock(wait, fn, realAfterFunc)
}

func newWithClock[T any](wait time.Duration, fn func(T), after afterFunc) *Func[T] {
	return &Func[T]{wait: wait, fn: fn, after: after}
}

// Call schedules fn(arg) after the wait, cancelling any call still pending.
// fn never runs on the caller's goroutine.
func (d *Func[T]) Call(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.arg = arg
	d.pending = true
	d.timer = d.after(d.wait, func() { d.fire(gen) })
}

func (d *Func[T]) fire(gen uint64) {
	d.mu.Lock()
	// a timer that lost the race with Stop or a newer Call is ignored
	if d.stopped || !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	arg := d.arg
	d.pending = false
	d.timer = nil
	d.mu.Unlock()
	d.fn(arg)
}

// Pending reports whether a call is scheduled.
func (d *Func[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Cancel drops the pending call, if any. Later Calls still work.
func (d *Func[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

func (d *Func[T]) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	d.gen++
}

// Stop cancels the pending call and disables the wrapper. Call it on teardown.
func (d *Func[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

// Flush runs the pending call now, on the caller's goroutine. It reports
// whether there was one.
func (d *Func[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return false
	}
	arg := d.arg
	d.cancelLocked()
	d.mu.Unlock()
	d.fn(arg)
	return true
}
