package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"

	"road-vision/internal/config"
	"road-vision/internal/core"
)

// SegmentDetector runs the probabilistic Hough transform over an edge map.
type SegmentDetector struct {
	cfg config.HoughConfig
}

// NewSegmentDetector creates the line segment detector from configuration
func NewSegmentDetector(cfg config.HoughConfig) *SegmentDetector {
	return &SegmentDetector{cfg: cfg}
}

func (d *SegmentDetector) GetName() string {
	return "hough"
}

// Detect returns every segment found in edges, in no particular order, each
// with its lower endpoint first. An edge map with no lines yields an empty
// slice.
func (d *SegmentDetector) Detect(edges gocv.Mat) ([]core.LineSegment, error) {
	if edges.Empty() {
		return nil, fmt.Errorf("edge map is empty")
	}
	if edges.Channels() != 1 {
		return nil, fmt.Errorf("edge map must be single-channel, got %d", edges.Channels())
	}

	lines := gocv.NewMat()
	defer lines.Close()

	if err := gocv.HoughLinesPWithParams(edges, &lines,
		d.cfg.Rho, d.cfg.Theta, d.cfg.Threshold, d.cfg.MinLineLength, d.cfg.MaxLineGap); err != nil {
		return nil, fmt.Errorf("hough transform: %w", err)
	}

	segments := make([]core.LineSegment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		segments = append(segments, core.Seg(int(v[0]), int(v[1]), int(v[2]), int(v[3])).LowerFirst())
	}
	return segments, nil
}
