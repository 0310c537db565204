package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineSegmentSlope(t *testing.T) {
	assert.InDelta(t, 1.0, Seg(600, 350, 650, 400).Slope(), 1e-12)
	assert.InDelta(t, -1.0, Seg(600, 400, 650, 350).Slope(), 1e-12)
	assert.True(t, math.IsInf(Seg(10, 0, 10, 50).Slope(), 0))
	assert.True(t, math.IsNaN(Seg(10, 10, 10, 10).Slope()))
}

func TestLineSegmentFinite(t *testing.T) {
	assert.True(t, Seg(1, 2, 3, 4).Finite())
	assert.False(t, LineSegment{X1: math.NaN()}.Finite())
	assert.False(t, LineSegment{Y2: math.Inf(1)}.Finite())
}

func TestLineSegmentLowerFirst(t *testing.T) {
	// Right lane leg as the line detector reports it: upper end first.
	upper := Seg(380, 330, 555, 470)
	got := upper.LowerFirst()
	assert.Equal(t, Seg(555, 470, 380, 330), got)
	assert.InDelta(t, upper.Slope(), got.Slope(), 1e-12)

	lower := Seg(85, 470, 260, 330)
	assert.Equal(t, lower, lower.LowerFirst())

	flat := Seg(10, 100, 90, 100)
	assert.Equal(t, flat, flat.LowerFirst())
}

func TestClassIndexString(t *testing.T) {
	assert.Equal(t, "pedestrian", ClassPedestrian.String())
	assert.Equal(t, "vehicle", ClassVehicle.String())
	assert.Equal(t, "signal", ClassSignal.String())
	assert.Equal(t, "unknown", ClassIndex(7).String())
}
