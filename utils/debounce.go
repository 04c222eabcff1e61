package utils

import (
	"sync"
	"time"
)

// Debouncer holds at most one pending task. Submitting a new task replaces
// and cancels the previous one if its timer has not fired yet.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
	seq     uint64
}

// NewDebouncer creates a debouncer which runs the latest task after a quiet period of d.
func NewDebouncer(d time.Duration) *Debouncer {
	return &Debouncer{delay: d}
}

// Submit schedules fn, discarding any task still waiting.
func (d *Debouncer) Submit(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stop()
	d.seq++
	d.pending = fn
	id := d.seq
	d.timer = time.AfterFunc(d.delay, func() { d.fire(id) })
}

// Flush runs the pending task immediately on the caller's goroutine.
// It reports whether a task was run.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	d.stop()
	fn := d.pending
	d.pending = nil
	d.seq++
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Cancel drops the pending task without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stop()
	d.pending = nil
	d.seq++
}

// Pending reports whether a task is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) fire(id uint64) {
	d.mu.Lock()
	// A superseded timer may still fire after Stop returned false.
	if id != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

// stop halts the active timer. Caller must hold the lock.
func (d *Debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
