// Polygonal regions: the road ROI trapezoid and lane overlay quadrilaterals
package core

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Polygon is an ordered list of integer vertices describing a fillable region.
type Polygon []image.Point

// RoadTrapezoid returns the drivable-road region for a width x height frame.
// The base spans the full bottom row; the top edge sits at topY*height and
// runs from topLeft*width to topRight*width.
func RoadTrapezoid(width, height int, topY, topLeft, topRight float64) Polygon {
	y := roundInt(topY * float64(height))
	// bottom-left, bottom-right, top-right, top-left
	return Polygon{
		{X: 0, Y: height},
		{X: width, Y: height},
		{X: roundInt(topRight * float64(width)), Y: y},
		{X: roundInt(topLeft * float64(width)), Y: y},
	}
}

// Validate checks the polygon has enough vertices to enclose an area.
func (p Polygon) Validate() error {
	if len(p) < 3 {
		return fmt.Errorf("polygon needs at least 3 vertices, got %d", len(p))
	}
	return nil
}

// Mask creates a single-channel mask (0 = outside, 255 = inside) of the
// given size with the polygon filled. Fewer than 3 vertices give an empty
// (all zero) mask.
func (p Polygon) Mask(width, height int) (gocv.Mat, error) {
	mask := gocv.Zeros(height, width, gocv.MatTypeCV8UC1)
	if len(p) < 3 {
		return mask, nil
	}

	pts := gocv.NewPointsVectorFromPoints([][]image.Point{p})
	defer pts.Close()

	if err := gocv.FillPoly(&mask, pts, white); err != nil {
		mask.Close()
		return gocv.NewMat(), fmt.Errorf("filling polygon: %w", err)
	}
	return mask, nil
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
