package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"road-vision/internal/core"
	"road-vision/internal/detect"
	"road-vision/internal/io"
	"road-vision/internal/lane"
	"road-vision/internal/metrics"
	"road-vision/internal/render"
	"road-vision/internal/stream"
)

// LaneProcessor produces the lane-composited frame.
type LaneProcessor interface {
	Process(frame gocv.Mat) (lane.Result, error)
}

// ObjectDetector returns one detection list per class.
type ObjectDetector interface {
	Detect(frame gocv.Mat) [][]core.Detection
}

// Preview receives annotated frames and telemetry.
type Preview interface {
	WriteFrame(frame gocv.Mat) error
	Publish(stats stream.FrameStats)
}

const memoryLogInterval = 300

// Options controls optional outputs.
type Options struct {
	Show     bool
	Headless bool
	KeyDelay int
}

// Deps are the collaborators the driver sequences. Sink and Preview may be
// nil. The driver closes Sink when Run returns.
type Deps struct {
	Source    io.Source
	Lanes     LaneProcessor
	Detector  ObjectDetector
	Annotator *render.Annotator
	Sink      io.Sink
	Display   io.Display
	Preview   Preview
	FPS       *metrics.FPSCounter
	Timings   *metrics.StageTimings
}

// Driver runs the frame loop.
type Driver struct {
	deps   Deps
	opts   Options
	logger *logrus.Entry
	state  State
}

// NewDriver wires a driver. logger should already carry the run_id field.
func NewDriver(deps Deps, opts Options, logger *logrus.Entry) *Driver {
	if deps.Annotator == nil {
		deps.Annotator = render.NewAnnotator()
	}
	if deps.FPS == nil {
		deps.FPS = metrics.NewFPSCounter(nil)
	}
	if deps.Display == nil {
		deps.Display = io.NewDisplay(false, true)
	}
	if opts.KeyDelay <= 0 {
		opts.KeyDelay = 1
	}
	return &Driver{deps: deps, opts: opts, logger: logger, state: NewState()}
}

// State returns a copy of the loop state.
func (d *Driver) State() State {
	return d.state
}

// Run processes frames until the source ends, a quit key is pressed or ctx
// is cancelled. Cancellation is checked between frames, so the frame in
// flight always completes. Returns nil on every clean stop.
func (d *Driver) Run(ctx context.Context) error {
	defer d.closeSink()

	frame := gocv.NewMat()
	defer frame.Close()

	d.logger.Info("Processing started")
	for d.state.Running {
		select {
		case <-ctx.Done():
			d.logger.Info("Interrupt received, stopping")
			d.state.Stop()
			continue
		default:
		}

		if !d.deps.Source.Read(&frame) {
			d.logger.WithField("frames", d.state.Frames).Info("End of stream")
			break
		}
		d.state.Frames++
		if d.state.Frames == 1 {
			info := core.Describe(frame)
			d.logger.WithFields(logrus.Fields{
				"size":     info.String(),
				"channels": info.Channels,
				"encoding": info.Encoding,
			}).Info("First frame received")
		}

		if err := d.step(frame); err != nil {
			return fmt.Errorf("frame %d: %w", d.state.Frames, err)
		}
		d.handleKey(d.deps.Display.PollKey(d.opts.KeyDelay))
	}

	d.logger.WithFields(logrus.Fields{
		"frames":      d.state.Frames,
		"sink_errors": d.state.SinkErrors,
	}).Info("Processing finished")
	d.logger.WithFields(metrics.ReadMemory().Fields()).Debug("Memory summary")
	return nil
}

func (d *Driver) step(frame gocv.Mat) error {
	var (
		composited gocv.Mat
		edges      gocv.Mat
		slots      [][]core.Detection
		laneRes    lane.Result
		haveLanes  bool
	)

	if d.state.Features {
		res, err := d.deps.Lanes.Process(frame)
		if err != nil {
			return err
		}
		defer res.Close()
		laneRes, haveLanes = res, true
		composited = res.Frame
		edges = res.Edges

		slots = d.deps.Detector.Detect(composited)
	} else {
		composited = frame
	}

	fps := d.deps.FPS.Tick()
	d.state.LastFPS = fps

	annotated := d.deps.Annotator.Annotate(composited, slots, fps)
	defer annotated.Close()

	if d.deps.Sink != nil {
		if err := d.deps.Sink.Write(annotated); err != nil {
			d.state.SinkErrors++
			d.logger.WithError(err).WithField("frame", d.state.Frames).Warn("Failed to write frame")
		}
	}

	d.deps.Display.Show(annotated)
	if d.opts.Show && haveLanes {
		d.deps.Display.ShowIntermediate(edges)
	}

	d.logger.WithFields(logrus.Fields{
		"frame":      d.state.Frames,
		"fps":        fps,
		"detections": detect.Count(slots),
	}).Debug("Frame processed")
	if d.state.Frames%memoryLogInterval == 0 {
		d.logger.WithFields(metrics.ReadMemory().Fields()).Debug("Memory usage")
	}

	if d.deps.Preview != nil {
		if err := d.deps.Preview.WriteFrame(annotated); err != nil {
			d.logger.WithError(err).Debug("Preview frame dropped")
		}
		d.deps.Preview.Publish(d.stats(annotated, fps, laneRes, haveLanes, slots))
	}
	return nil
}

func (d *Driver) stats(frame gocv.Mat, fps int, res lane.Result, haveLanes bool, slots [][]core.Detection) stream.FrameStats {
	fs := stream.FrameStats{
		Frame:      d.state.Frames,
		Size:       core.Describe(frame).String(),
		FPS:        fps,
		Features:   d.state.Features,
		Detections: make(map[string]int, core.NumClasses),
		Timestamp:  time.Now().Format("2006-01-02 15:04:05"),
	}
	if id, ok := d.logger.Data["run_id"].(string); ok {
		fs.RunID = id
	}
	if haveLanes {
		fs.LeftLane = res.Lanes.Left != nil
		fs.RightLane = res.Lanes.Right != nil
		fs.Segments = len(res.Segments)
	}
	for i, s := range slots {
		fs.Detections[core.ClassIndex(i).String()] = len(s)
	}
	if d.deps.Timings != nil {
		fs.Stages = d.deps.Timings.Snapshot()
	}
	return fs
}

func (d *Driver) handleKey(key int) {
	switch key {
	case io.KeyQuit, io.KeyEsc:
		d.logger.Info("Exit requested")
		d.state.Stop()
	case io.KeySpace:
		on := d.state.ToggleFeatures()
		d.logger.WithField("features", on).Info("Feature processing toggled")
	}
}

func (d *Driver) closeSink() {
	if d.deps.Sink == nil {
		return
	}
	if err := d.deps.Sink.Close(); err != nil {
		d.logger.WithError(err).Warn("Failed to close sink")
	}
}
