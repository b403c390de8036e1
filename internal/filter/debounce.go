package filter

import (
	"sync"
	"time"
)

// Debouncer runs the most recently scheduled function once Delay has passed
// without another call to Trigger.
type Debouncer struct {
	Delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	fn    func()
	gen   uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{Delay: delay}
}

// Trigger schedules fn, replacing anything still pending.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancel()
	d.fn = fn
	gen := d.gen
	d.timer = time.AfterFunc(d.Delay, func() { d.fire(gen) })
}

// fire runs fn if no later Trigger, Flush or Stop superseded generation gen.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.fn == nil {
		d.mu.Unlock()
		return
	}
	fn := d.fn
	d.cancel()
	d.mu.Unlock()
	fn()
}

// Flush runs the pending function now, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fn := d.fn
	d.cancel()
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Stop drops the pending function.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancel()
}

func (d *Debouncer) cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.fn = nil
	d.gen++
}
