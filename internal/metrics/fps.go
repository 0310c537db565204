// Throughput and per-stage timing metrics for the frame loop
package metrics

import "time"

// Clock abstracts wall time so counters can be driven deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the real wall clock.
var SystemClock Clock = systemClock{}

// FPSCounter reports frames per second over whole-second windows. Until
// the first window closes it reports 1.
type FPSCounter struct {
	clock   Clock
	start   time.Time
	frames  int
	current int
}

// NewFPSCounter starts a counter at the clock's current time
func NewFPSCounter(clock Clock) *FPSCounter {
	if clock == nil {
		clock = SystemClock
	}
	return &FPSCounter{clock: clock, start: clock.Now(), current: 1}
}

// Tick records one processed frame and returns the value to display. Once
// at least one full second has elapsed the frame count becomes the
// displayed value and the window restarts.
func (f *FPSCounter) Tick() int {
	f.frames++

	now := f.clock.Now()
	if int(now.Sub(f.start)/time.Second) >= 1 {
		f.current = f.frames
		f.frames = 0
		f.start = now
	}
	return f.current
}

// Current returns the last displayed value without counting a frame.
func (f *FPSCounter) Current() int {
	return f.current
}
