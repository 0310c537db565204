package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestFPSCounterStartsAtOne(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	fps := NewFPSCounter(clock)

	assert.Equal(t, 1, fps.Current())
	for i := 0; i < 10; i++ {
		clock.Advance(50 * time.Millisecond)
		assert.Equal(t, 1, fps.Tick())
	}
}

func TestFPSCounterWholeSecondWindows(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	fps := NewFPSCounter(clock)

	// 25 frames spread over exactly one second.
	var shown int
	for i := 0; i < 25; i++ {
		clock.Advance(40 * time.Millisecond)
		shown = fps.Tick()
	}
	assert.Equal(t, 25, shown)

	// The next window holds its value until another full second passes.
	for i := 0; i < 10; i++ {
		clock.Advance(90 * time.Millisecond)
		assert.Equal(t, 25, fps.Tick())
	}
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 11, fps.Tick())
}

func TestFPSCounterSlowFrames(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	fps := NewFPSCounter(clock)

	clock.Advance(2500 * time.Millisecond)
	assert.Equal(t, 1, fps.Tick())

	clock.Advance(3 * time.Second)
	assert.Equal(t, 1, fps.Tick())
}

func TestFPSCounterDefaultsToSystemClock(t *testing.T) {
	fps := NewFPSCounter(nil)
	assert.Equal(t, 1, fps.Tick())
}
