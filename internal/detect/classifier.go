// Package detect runs the fixed set of region classifiers over a frame.
package detect

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"road-vision/internal/config"
	"road-vision/internal/core"
)

// Classifier finds bounding boxes for one object class. Detect must not
// modify img; several classifiers read the same Mat at once.
type Classifier interface {
	Detect(img gocv.Mat) []image.Rectangle
	Close() error
}

// Cascade adapts a gocv cascade classifier.
type Cascade struct {
	path         string
	cc           gocv.CascadeClassifier
	scaleFactor  float64
	minNeighbors int
}

// LoadCascade loads the model file at path. A missing or unparsable file
// yields core.ErrResource.
func LoadCascade(path string, cfg config.DetectorConfig) (*Cascade, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: classifier path is empty", core.ErrResource)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: classifier model %s: %v", core.ErrResource, path, err)
	}

	cc := gocv.NewCascadeClassifier()
	if !cc.Load(path) {
		cc.Close()
		return nil, fmt.Errorf("%w: failed to load classifier model %s", core.ErrResource, path)
	}

	return &Cascade{
		path:         path,
		cc:           cc,
		scaleFactor:  cfg.ScaleFactor,
		minNeighbors: cfg.MinNeighbors,
	}, nil
}

func (c *Cascade) Detect(img gocv.Mat) []image.Rectangle {
	return c.cc.DetectMultiScaleWithParams(img, c.scaleFactor, c.minNeighbors, 0, image.Point{}, image.Point{})
}

func (c *Cascade) Close() error {
	return c.cc.Close()
}

func (c *Cascade) String() string {
	return c.path
}
