package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"

	"road-vision/internal/config"
	"road-vision/internal/core"
)

// RegionOfInterest blanks everything outside the road trapezoid.
type RegionOfInterest struct {
	cfg config.ROIConfig
}

// NewRegionOfInterest creates the ROI stage from configuration
func NewRegionOfInterest(cfg config.ROIConfig) *RegionOfInterest {
	return &RegionOfInterest{cfg: cfg}
}

func (r *RegionOfInterest) GetName() string {
	return "roi"
}

// Polygon returns the trapezoid for a frame of the given size.
func (r *RegionOfInterest) Polygon(width, height int) core.Polygon {
	return core.RoadTrapezoid(width, height, r.cfg.TopY, r.cfg.TopLeft, r.cfg.TopRight)
}

// Apply intersects input with the trapezoid. Applying it twice is the same
// as applying it once.
func (r *RegionOfInterest) Apply(input gocv.Mat) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	mask, err := r.Polygon(input.Cols(), input.Rows()).Mask(input.Cols(), input.Rows())
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("building road mask: %w", err)
	}
	defer mask.Close()

	output := gocv.Zeros(input.Rows(), input.Cols(), input.Type())
	if err := gocv.BitwiseAndWithMask(input, input, &output, mask); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("applying road mask: %w", err)
	}
	return output, nil
}
