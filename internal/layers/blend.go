// Weighted compositing of overlay layers onto source frames
package layers

import (
	"fmt"

	"gocv.io/x/gocv"

	"road-vision/internal/config"
)

// Compositor blends an overlay onto a source frame with a fixed weighted
// sum: dst = overlay*OverlayWeight + source*SourceWeight + Offset. This is
// an additive blend, so bright overlapping regions saturate at 255.
type Compositor struct {
	OverlayWeight float64
	SourceWeight  float64
	Offset        float64
}

// NewCompositor creates a compositor from the lane configuration
func NewCompositor(cfg config.LaneConfig) *Compositor {
	return &Compositor{
		OverlayWeight: cfg.OverlayWeight,
		SourceWeight:  cfg.SourceWeight,
		Offset:        cfg.BlendOffset,
	}
}

// Blend returns a new Mat; neither input is modified.
func (c *Compositor) Blend(overlay, source gocv.Mat) (gocv.Mat, error) {
	if overlay.Empty() || source.Empty() {
		return gocv.NewMat(), fmt.Errorf("cannot blend empty image")
	}
	if overlay.Rows() != source.Rows() || overlay.Cols() != source.Cols() {
		return gocv.NewMat(), fmt.Errorf("size mismatch: overlay %dx%d, source %dx%d",
			overlay.Cols(), overlay.Rows(), source.Cols(), source.Rows())
	}
	if overlay.Type() != source.Type() {
		return gocv.NewMat(), fmt.Errorf("type mismatch: overlay %v, source %v", overlay.Type(), source.Type())
	}

	output := gocv.NewMat()
	if err := gocv.AddWeighted(overlay, c.OverlayWeight, source, c.SourceWeight, c.Offset, &output); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("weighted blend: %w", err)
	}
	return output, nil
}
