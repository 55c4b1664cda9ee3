// Package clock provides the monotonic millisecond time source used for
// sensor cadence and button debounce.
package clock

import "time"

// Clock is a monotonic millisecond counter that can also block for a duration.
type Clock interface {
	// Millis returns milliseconds since the clock was started. It never goes backwards.
	Millis() int64
	// Sleep blocks for d.
	Sleep(d time.Duration)
}

// Real is a Clock backed by the runtime monotonic clock.
type Real struct {
	start time.Time
}

// NewReal starts a real clock at zero.
func NewReal() *Real {
	return &Real{start: time.Now()}
}

// Millis returns milliseconds elapsed since NewReal.
func (r *Real) Millis() int64 {
	return time.Since(r.start).Milliseconds()
}

// Sleep blocks the calling goroutine for d.
func (r *Real) Sleep(d time.Duration) {
	time.Sleep(d)
}

// Fake is a manually advanced Clock for tests and simulation.
// Sleep advances the fake time instead of blocking.
type Fake struct {
	now int64

	// OnSleep, if set, is called after every Sleep with the new time.
	OnSleep func(now int64)
}

// NewFake creates a fake clock at the given millisecond value.
func NewFake(startMs int64) *Fake {
	return &Fake{now: startMs}
}

// Millis returns the current fake time.
func (f *Fake) Millis() int64 {
	return f.now
}

// Sleep advances the fake time by d, rounded down to whole milliseconds (minimum 1ms).
func (f *Fake) Sleep(d time.Duration) {
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	f.now += ms
	if f.OnSleep != nil {
		f.OnSleep(f.now)
	}
}

// Advance moves the fake time forward by ms milliseconds.
func (f *Fake) Advance(ms int64) {
	f.now += ms
}

// Set moves the fake time to ms. Moving backwards is ignored.
func (f *Fake) Set(ms int64) {
	if ms > f.now {
		f.now = ms
	}
}
