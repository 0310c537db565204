package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"

	"road-vision/internal/config"
)

// EdgeDetector converts to grayscale and runs Canny.
type EdgeDetector struct {
	low, high float32
}

// NewEdgeDetector creates the edge stage from configuration
func NewEdgeDetector(cfg config.EdgeConfig) *EdgeDetector {
	return &EdgeDetector{low: cfg.Low, high: cfg.High}
}

func (e *EdgeDetector) GetName() string {
	return "edges"
}

func (e *EdgeDetector) Apply(input gocv.Mat) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	gray := input
	if input.Channels() != 1 {
		gray = gocv.NewMat()
		defer gray.Close()
		if err := gocv.CvtColor(input, &gray, gocv.ColorBGRToGray); err != nil {
			return gocv.NewMat(), fmt.Errorf("converting to grayscale: %w", err)
		}
	}

	output := gocv.NewMat()
	if err := gocv.Canny(gray, &output, e.low, e.high); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("canny: %w", err)
	}
	return output, nil
}
