// Package render draws detection boxes and telemetry onto output frames.
package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"road-vision/internal/core"
)

// drawOrder is the fixed slot order boxes are painted in; later classes
// paint over earlier ones where boxes overlap.
var drawOrder = [core.NumClasses]core.ClassIndex{
	core.ClassSignal,
	core.ClassVehicle,
	core.ClassPedestrian,
}

// ClassColors maps each class to its box color.
var ClassColors = [core.NumClasses]color.RGBA{
	core.ClassPedestrian: {R: 128, G: 0, B: 128, A: 255},
	core.ClassVehicle:    {R: 255, G: 255, B: 0, A: 255},
	core.ClassSignal:     {R: 255, G: 0, B: 0, A: 255},
}

// Annotator renders detections and the FPS readout.
type Annotator struct {
	BoxThickness int
	FPSOrigin    image.Point
	FPSScale     float64
	FPSColor     color.RGBA
	FPSThickness int
}

// NewAnnotator returns an annotator with the standard styling.
func NewAnnotator() *Annotator {
	return &Annotator{
		BoxThickness: 2,
		FPSOrigin:    image.Pt(30, 30),
		FPSScale:     1.0,
		FPSColor:     color.RGBA{G: 255, A: 255},
		FPSThickness: 2,
	}
}

// FPSLabel formats the readout text.
func FPSLabel(fps int) string {
	return fmt.Sprintf("Frames/second: %d", fps)
}

// Annotate returns a copy of frame with every detection box and the FPS
// readout drawn on it. A nil slot list draws only the readout.
func (a *Annotator) Annotate(frame gocv.Mat, slots [][]core.Detection, fps int) gocv.Mat {
	out := frame.Clone()
	a.DrawDetections(&out, slots)
	a.DrawFPS(&out, fps)
	return out
}

// DrawDetections paints boxes in place, slot by slot in draw order.
func (a *Annotator) DrawDetections(img *gocv.Mat, slots [][]core.Detection) {
	for _, class := range drawOrder {
		if int(class) >= len(slots) {
			continue
		}
		for _, d := range slots[class] {
			gocv.Rectangle(img, d.Box, ClassColors[class], a.BoxThickness)
		}
	}
}

// DrawFPS paints the readout in place.
func (a *Annotator) DrawFPS(img *gocv.Mat, fps int) {
	gocv.PutText(img, FPSLabel(fps), a.FPSOrigin, gocv.FontHersheySimplex, a.FPSScale, a.FPSColor, a.FPSThickness)
}
