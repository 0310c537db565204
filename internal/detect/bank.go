package detect

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/iter"
	"gocv.io/x/gocv"

	"road-vision/internal/algorithms"
	"road-vision/internal/config"
	"road-vision/internal/core"
)

// Bank is the immutable classifier registry. Slot i always holds the
// classifier for core.ClassIndex(i).
type Bank struct {
	logger      logrus.FieldLogger
	classifiers [core.NumClasses]Classifier
	observe     algorithms.Observer
}

// NewBank builds a bank from classifiers given in class order. Every slot
// must be filled.
func NewBank(logger logrus.FieldLogger, classifiers ...Classifier) (*Bank, error) {
	if len(classifiers) != core.NumClasses {
		return nil, fmt.Errorf("%w: expected %d classifiers, got %d", core.ErrResource, core.NumClasses, len(classifiers))
	}

	b := &Bank{logger: logger}
	for i, c := range classifiers {
		if c == nil {
			return nil, fmt.Errorf("%w: no classifier for %s", core.ErrResource, core.ClassIndex(i))
		}
		b.classifiers[i] = c
	}
	return b, nil
}

// LoadRegistry loads every configured cascade model. If any model fails,
// the ones already loaded are released and the error is returned.
func LoadRegistry(cfg config.DetectorConfig, logger logrus.FieldLogger) (*Bank, error) {
	paths := config.Config{Detectors: cfg}.ClassifierPaths()

	loaded := make([]Classifier, 0, len(paths))
	for i, path := range paths {
		c, err := LoadCascade(path, cfg)
		if err != nil {
			for _, l := range loaded {
				l.Close()
			}
			return nil, fmt.Errorf("loading %s classifier: %w", core.ClassIndex(i), err)
		}

		logger.WithFields(logrus.Fields{
			"class": core.ClassIndex(i).String(),
			"path":  path,
		}).Info("Classifier loaded")
		loaded = append(loaded, c)
	}

	return NewBank(logger, loaded...)
}

// WithObserver reports the wall time of each classifier to o.
func (b *Bank) WithObserver(o algorithms.Observer) *Bank {
	b.observe = o
	return b
}

// Detect runs every classifier concurrently over frame and returns one
// detection list per class, indexed by core.ClassIndex. It returns only
// after all classifiers have finished.
func (b *Bank) Detect(frame gocv.Mat) [][]core.Detection {
	slots := make([]core.ClassIndex, core.NumClasses)
	for i := range slots {
		slots[i] = core.ClassIndex(i)
	}

	mapper := iter.Mapper[core.ClassIndex, []core.Detection]{MaxGoroutines: core.NumClasses}
	return mapper.Map(slots, func(class *core.ClassIndex) []core.Detection {
		return b.run(*class, frame)
	})
}

// DetectSequential runs the classifiers one after another in class order.
func (b *Bank) DetectSequential(frame gocv.Mat) [][]core.Detection {
	out := make([][]core.Detection, core.NumClasses)
	for i := range out {
		out[i] = b.run(core.ClassIndex(i), frame)
	}
	return out
}

func (b *Bank) run(class core.ClassIndex, frame gocv.Mat) []core.Detection {
	start := time.Now()
	boxes := b.classifiers[class].Detect(frame)
	if b.observe != nil {
		b.observe("detect_"+class.String(), time.Since(start))
	}

	dets := make([]core.Detection, len(boxes))
	for i, box := range boxes {
		dets[i] = core.Detection{Class: class, Box: box}
	}
	return dets
}

// Count returns the total number of detections across slots.
func Count(slots [][]core.Detection) int {
	n := 0
	for _, s := range slots {
		n += len(s)
	}
	return n
}

// Close releases every classifier.
func (b *Bank) Close() error {
	var errs []error
	for _, c := range b.classifiers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.logger.WithField("errors", len(errs)).Debug("Classifiers released")
	return errors.Join(errs...)
}
