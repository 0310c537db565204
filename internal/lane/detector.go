package lane

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"road-vision/internal/algorithms"
	"road-vision/internal/config"
	"road-vision/internal/core"
	"road-vision/internal/layers"
)

// Result is everything one lane pass produced. Frame and Edges are owned
// by the caller and must be released with Close.
type Result struct {
	Frame    gocv.Mat
	Edges    gocv.Mat
	Segments []core.LineSegment
	Lanes    Estimate
}

func (r *Result) Close() {
	r.Frame.Close()
	r.Edges.Close()
}

// Detector runs color masking, road-region masking, edge detection, segment
// extraction, lane fitting and overlay blending over a single frame.
type Detector struct {
	logger     logrus.FieldLogger
	chain      *algorithms.Chain
	segments   *algorithms.SegmentDetector
	fitter     *Fitter
	compositor *layers.Compositor
	style      Style
	observe    algorithms.Observer
}

// NewDetector wires the lane stages from configuration
func NewDetector(cfg config.Config, logger logrus.FieldLogger) *Detector {
	d := &Detector{
		logger: logger,
		chain: algorithms.NewChain(
			algorithms.NewColorMask(cfg.ColorMask),
			algorithms.NewRegionOfInterest(cfg.ROI),
			algorithms.NewEdgeDetector(cfg.Edges),
		),
		segments:   algorithms.NewSegmentDetector(cfg.Hough),
		fitter:     NewFitter(cfg.Lane),
		compositor: layers.NewCompositor(cfg.Lane),
		style:      DefaultStyle(cfg.Lane.LineThickness),
	}
	return d
}

// WithObserver reports per-stage wall time to o.
func (d *Detector) WithObserver(o algorithms.Observer) *Detector {
	d.observe = o
	d.chain.WithObserver(o)
	return d
}

// Process annotates frame with the detected lane. frame is not modified.
func (d *Detector) Process(frame gocv.Mat) (Result, error) {
	if err := core.ValidateColorFrame(frame); err != nil {
		return Result{}, err
	}

	edges, err := d.chain.Run(frame)
	if err != nil {
		return Result{}, fmt.Errorf("lane preprocessing: %w", err)
	}

	start := time.Now()
	segments, err := d.segments.Detect(edges)
	d.timed(d.segments.GetName(), start)
	if err != nil {
		edges.Close()
		return Result{}, fmt.Errorf("segment detection: %w", err)
	}

	start = time.Now()
	est := d.fitter.Fit(segments, frame.Cols(), frame.Rows())
	d.timed("fit", start)

	d.logger.WithFields(logrus.Fields{
		"segments": len(segments),
		"left":     est.Left != nil,
		"right":    est.Right != nil,
	}).Debug("Lane fit complete")

	if est.Empty() {
		return Result{Frame: frame.Clone(), Edges: edges, Segments: segments, Lanes: est}, nil
	}

	start = time.Now()
	overlay := gocv.Zeros(frame.Rows(), frame.Cols(), frame.Type())
	defer overlay.Close()
	if err := DrawOverlay(MatCanvas{Mat: &overlay}, est, d.style); err != nil {
		edges.Close()
		return Result{}, err
	}

	blended, err := d.compositor.Blend(overlay, frame)
	d.timed("overlay", start)
	if err != nil {
		edges.Close()
		return Result{}, fmt.Errorf("overlay blend: %w", err)
	}

	return Result{Frame: blended, Edges: edges, Segments: segments, Lanes: est}, nil
}

func (d *Detector) timed(stage string, start time.Time) {
	if d.observe != nil {
		d.observe(stage, time.Since(start))
	}
}
