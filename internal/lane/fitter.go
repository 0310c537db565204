// Package lane estimates left and right lane boundaries from line segments.
//
// Estimation is memoryless: each frame's lanes come only from that frame's
// segments. A side with no qualifying segments has no model for the frame.
package lane

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"road-vision/internal/config"
	"road-vision/internal/core"
)

// Side is the lane boundary a model describes.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Point is a sub-pixel image coordinate.
type Point struct {
	X, Y float64
}

// Pixel rounds to the nearest integer pixel.
func (p Point) Pixel() (int, int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}

// Model is the averaged line y = Slope*x + Intercept for one side, with
// its extrapolated boundary points.
type Model struct {
	Side      Side
	Slope     float64
	Intercept float64
	Near      Point
	Far       Point
	Members   int
}

// XAt solves the model for x at image row y.
func (m Model) XAt(y float64) float64 {
	return (y - m.Intercept) / m.Slope
}

// Estimate is the per-frame fitting result. A nil side means no segment
// qualified for it.
type Estimate struct {
	Left   *Model
	Right  *Model
	Width  int
	Height int
}

// Empty reports whether neither side produced a model.
func (e Estimate) Empty() bool {
	return e.Left == nil && e.Right == nil
}

// Models returns the present models, left first.
func (e Estimate) Models() []*Model {
	out := make([]*Model, 0, 2)
	if e.Left != nil {
		out = append(out, e.Left)
	}
	if e.Right != nil {
		out = append(out, e.Right)
	}
	return out
}

// Quad returns the road-surface quadrilateral (left-near, left-far,
// right-far, right-near). It is only defined when both sides are present.
func (e Estimate) Quad() (core.Polygon, bool) {
	if e.Left == nil || e.Right == nil {
		return nil, false
	}
	return core.Polygon{
		pixel(e.Left.Near),
		pixel(e.Left.Far),
		pixel(e.Right.Far),
		pixel(e.Right.Near),
	}, true
}

// Fitter partitions segments into lane families and averages them.
type Fitter struct {
	cfg config.LaneConfig
}

// NewFitter creates a fitter from the lane configuration
func NewFitter(cfg config.LaneConfig) *Fitter {
	return &Fitter{cfg: cfg}
}

type family struct {
	slopes     []float64
	intercepts []float64
}

func (f *family) add(slope float64, s core.LineSegment) {
	f.slopes = append(f.slopes, slope)
	f.intercepts = append(f.intercepts, s.Y2-slope*s.X2)
}

// Fit classifies segments for a width x height frame:
//
//	slope >  MinSlope and x1 > RightRegionX*width  -> right family
//	slope < -MinSlope and x1 < LeftRegionX*width   -> left family
//
// Everything else (near-horizontal, wrong half, non-finite) is dropped.
// Segments from algorithms.SegmentDetector carry their lower endpoint in
// (x1, y1), so the region test is made where a lane meets the bottom.
func (f *Fitter) Fit(segments []core.LineSegment, width, height int) Estimate {
	rightX := f.cfg.RightRegionX * float64(width)
	leftX := f.cfg.LeftRegionX * float64(width)

	var left, right family
	for _, s := range segments {
		if !s.Finite() {
			continue
		}
		slope := s.Slope()
		if math.IsNaN(slope) || math.IsInf(slope, 0) {
			continue
		}

		switch {
		case slope > f.cfg.MinSlope && s.X1 > rightX:
			right.add(slope, s)
		case slope < -f.cfg.MinSlope && s.X1 < leftX:
			left.add(slope, s)
		}
	}

	nearY := f.cfg.NearY * float64(height)
	farY := f.cfg.FarY * float64(height)

	return Estimate{
		Left:   left.model(Left, nearY, farY),
		Right:  right.model(Right, nearY, farY),
		Width:  width,
		Height: height,
	}
}

func (f *family) model(side Side, nearY, farY float64) *Model {
	if len(f.slopes) == 0 {
		return nil
	}

	m := &Model{
		Side:      side,
		Slope:     stat.Mean(f.slopes, nil),
		Intercept: stat.Mean(f.intercepts, nil),
		Members:   len(f.slopes),
	}
	if m.Slope == 0 || !finite(m.Slope) || !finite(m.Intercept) {
		return nil
	}

	m.Near = Point{X: m.XAt(nearY), Y: nearY}
	m.Far = Point{X: m.XAt(farY), Y: farY}
	if !finite(m.Near.X) || !finite(m.Far.X) {
		return nil
	}
	return m
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
