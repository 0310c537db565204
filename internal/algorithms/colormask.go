package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"

	"road-vision/internal/config"
)

// ColorMask keeps only pixels whose HLS value falls in the yellow or the
// white lane-marking band.
type ColorMask struct {
	yellowLo, yellowHi gocv.Scalar
	whiteLo, whiteHi   gocv.Scalar
}

// NewColorMask creates the color mask stage from configuration
func NewColorMask(cfg config.ColorMaskConfig) *ColorMask {
	return &ColorMask{
		yellowLo: scalar(cfg.Yellow.Lower),
		yellowHi: scalar(cfg.Yellow.Upper),
		whiteLo:  scalar(cfg.White.Lower),
		whiteHi:  scalar(cfg.White.Upper),
	}
}

func scalar(v [3]float64) gocv.Scalar {
	return gocv.NewScalar(v[0], v[1], v[2], 0)
}

func (cm *ColorMask) GetName() string {
	return "color_mask"
}

// Apply converts a BGR frame to HLS, thresholds it and returns the source
// pixels under the combined mask (everything else black).
func (cm *ColorMask) Apply(input gocv.Mat) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}
	if input.Channels() != 3 {
		return gocv.NewMat(), fmt.Errorf("color mask needs a 3-channel frame, got %d", input.Channels())
	}

	hls := gocv.NewMat()
	defer hls.Close()
	if err := gocv.CvtColor(input, &hls, gocv.ColorBGRToHLS); err != nil {
		return gocv.NewMat(), fmt.Errorf("converting to HLS: %w", err)
	}

	mask, err := cm.Threshold(hls)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer mask.Close()

	output := gocv.Zeros(input.Rows(), input.Cols(), input.Type())
	if err := gocv.BitwiseAndWithMask(input, input, &output, mask); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("applying color mask: %w", err)
	}
	return output, nil
}

// Threshold returns the binary OR of the yellow and white range masks for
// an image already in HLS. Range bounds are inclusive.
func (cm *ColorMask) Threshold(hls gocv.Mat) (gocv.Mat, error) {
	yellow := gocv.NewMat()
	defer yellow.Close()
	if err := gocv.InRangeWithScalar(hls, cm.yellowLo, cm.yellowHi, &yellow); err != nil {
		return gocv.NewMat(), fmt.Errorf("yellow range: %w", err)
	}

	white := gocv.NewMat()
	defer white.Close()
	if err := gocv.InRangeWithScalar(hls, cm.whiteLo, cm.whiteHi, &white); err != nil {
		return gocv.NewMat(), fmt.Errorf("white range: %w", err)
	}

	combined := gocv.NewMat()
	if err := gocv.BitwiseOr(yellow, white, &combined); err != nil {
		combined.Close()
		return gocv.NewMat(), fmt.Errorf("combining masks: %w", err)
	}
	return combined, nil
}
