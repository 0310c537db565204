package lane

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"road-vision/internal/core"
)

// Canvas is the drawing surface the overlay is rendered onto.
type Canvas interface {
	FillPoly(poly core.Polygon, c color.RGBA) error
	Line(a, b image.Point, c color.RGBA, thickness int)
}

// Style holds the overlay colors and boundary line thickness.
type Style struct {
	Fill      color.RGBA
	LeftLine  color.RGBA
	RightLine color.RGBA
	Thickness int
}

// DefaultStyle is a blue road surface with green boundary lines.
func DefaultStyle(thickness int) Style {
	green := color.RGBA{G: 255, A: 255}
	return Style{
		Fill:      color.RGBA{B: 255, A: 255},
		LeftLine:  green,
		RightLine: green,
		Thickness: thickness,
	}
}

// DrawOverlay renders an estimate. The quadrilateral is filled only when
// both sides exist; each present side gets its boundary line. An empty
// estimate draws nothing.
func DrawOverlay(c Canvas, est Estimate, style Style) error {
	if quad, ok := est.Quad(); ok {
		if err := c.FillPoly(quad, style.Fill); err != nil {
			return fmt.Errorf("filling road surface: %w", err)
		}
	}
	if est.Left != nil {
		c.Line(pixel(est.Left.Near), pixel(est.Left.Far), style.LeftLine, style.Thickness)
	}
	if est.Right != nil {
		c.Line(pixel(est.Right.Near), pixel(est.Right.Far), style.RightLine, style.Thickness)
	}
	return nil
}

func pixel(p Point) image.Point {
	x, y := p.Pixel()
	return image.Pt(x, y)
}

// MatCanvas draws into a gocv.Mat.
type MatCanvas struct {
	Mat *gocv.Mat
}

func (mc MatCanvas) FillPoly(poly core.Polygon, c color.RGBA) error {
	if err := poly.Validate(); err != nil {
		return err
	}
	pts := gocv.NewPointsVectorFromPoints([][]image.Point{poly})
	defer pts.Close()
	return gocv.FillPoly(mc.Mat, pts, c)
}

func (mc MatCanvas) Line(a, b image.Point, c color.RGBA, thickness int) {
	gocv.Line(mc.Mat, a, b, c, thickness)
}
