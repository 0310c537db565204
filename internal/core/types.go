package core

import (
	"image"
	"math"
)

// LineSegment is one raw segment reported by the line detector.
type LineSegment struct {
	X1, Y1, X2, Y2 float64
}

// Seg builds a LineSegment from integer endpoints.
func Seg(x1, y1, x2, y2 int) LineSegment {
	return LineSegment{X1: float64(x1), Y1: float64(y1), X2: float64(x2), Y2: float64(y2)}
}

// Slope returns (y1-y2)/(x1-x2). Vertical segments yield ±Inf and
// degenerate (zero-length) ones NaN.
func (s LineSegment) Slope() float64 {
	return (s.Y1 - s.Y2) / (s.X1 - s.X2)
}

// Finite reports whether every coordinate is a finite number.
func (s LineSegment) Finite() bool {
	for _, v := range [...]float64{s.X1, s.Y1, s.X2, s.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// LowerFirst orders the endpoints so (X1, Y1) is the one nearer the bottom
// of the image (larger y). Horizontal segments keep their order.
func (s LineSegment) LowerFirst() LineSegment {
	if s.Y1 < s.Y2 {
		return LineSegment{X1: s.X2, Y1: s.Y2, X2: s.X1, Y2: s.Y1}
	}
	return s
}

// ClassIndex identifies a classifier slot. The ordering is fixed so results
// are reproducible regardless of completion order.
type ClassIndex int

const (
	ClassPedestrian ClassIndex = iota
	ClassVehicle
	ClassSignal

	NumClasses = 3
)

var classNames = [NumClasses]string{"pedestrian", "vehicle", "signal"}

func (c ClassIndex) String() string {
	if c < 0 || int(c) >= NumClasses {
		return "unknown"
	}
	return classNames[c]
}

// Detection is one bounding box reported by a classifier.
type Detection struct {
	Class ClassIndex
	Box   image.Rectangle
}
