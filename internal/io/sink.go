package io

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"road-vision/internal/core"
)

// Sink receives annotated frames.
type Sink interface {
	Write(frame gocv.Mat) error
	Close() error
}

// VideoSink writes frames to a video container with a fixed codec.
type VideoSink struct {
	logger logrus.FieldLogger
	path   string
	writer *gocv.VideoWriter
	width  int
	height int
	frames int
}

// OpenSink creates path for writing at the given rate and size. A non-
// positive fps falls back to 30.
func OpenSink(path, codec string, fps float64, width, height int, logger logrus.FieldLogger) (*VideoSink, error) {
	if err := validateSinkParams(path, codec, width, height); err != nil {
		return nil, err
	}
	if fps <= 0 {
		fps = 30
	}

	writer, err := gocv.VideoWriterFile(path, codec, fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot create output %s: %v", core.ErrInput, path, err)
	}
	if !writer.IsOpened() {
		writer.Close()
		return nil, fmt.Errorf("%w: cannot create output %s", core.ErrInput, path)
	}

	logger.WithFields(logrus.Fields{
		"path":   path,
		"codec":  codec,
		"fps":    fps,
		"width":  width,
		"height": height,
	}).Info("Video sink opened")

	return &VideoSink{logger: logger, path: path, writer: writer, width: width, height: height}, nil
}

func validateSinkParams(path, codec string, width, height int) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: output path is empty", core.ErrInput)
	}
	if filepath.Ext(path) == "" {
		return fmt.Errorf("%w: output path %s has no container extension", core.ErrInput, path)
	}
	if len(codec) != 4 {
		return fmt.Errorf("%w: codec must be a four character code, got %q", core.ErrInput, codec)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: invalid output size %dx%d", core.ErrInput, width, height)
	}
	return nil
}

// Write appends one frame. Failures wrap core.ErrSinkWrite.
func (vs *VideoSink) Write(frame gocv.Mat) error {
	if frame.Empty() {
		return fmt.Errorf("%w: empty frame", core.ErrSinkWrite)
	}
	if frame.Cols() != vs.width || frame.Rows() != vs.height {
		return fmt.Errorf("%w: frame %dx%d does not match output %dx%d",
			core.ErrSinkWrite, frame.Cols(), frame.Rows(), vs.width, vs.height)
	}
	if err := vs.writer.Write(frame); err != nil {
		return fmt.Errorf("%w: %v", core.ErrSinkWrite, err)
	}
	vs.frames++
	return nil
}

// Frames returns how many frames were written.
func (vs *VideoSink) Frames() int {
	return vs.frames
}

func (vs *VideoSink) Close() error {
	vs.logger.WithFields(logrus.Fields{
		"path":   vs.path,
		"frames": vs.frames,
	}).Info("Video sink closed")
	return vs.writer.Close()
}
