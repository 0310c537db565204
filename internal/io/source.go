// Frame sources: video files, capture devices and still images
package io

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"road-vision/internal/core"
)

// Source yields frames in order. Read returns false at end of stream or on
// a failed read; neither is an error.
type Source interface {
	Read(frame *gocv.Mat) bool
	FPS() float64
	Size() (width, height int)
	Close() error
}

// VideoSource reads from a gocv.VideoCapture.
type VideoSource struct {
	vc *gocv.VideoCapture
}

func (vs *VideoSource) Read(frame *gocv.Mat) bool {
	if ok := vs.vc.Read(frame); !ok {
		return false
	}
	return !frame.Empty()
}

func (vs *VideoSource) FPS() float64 {
	return vs.vc.Get(gocv.VideoCaptureFPS)
}

func (vs *VideoSource) Size() (int, int) {
	return int(vs.vc.Get(gocv.VideoCaptureFrameWidth)), int(vs.vc.Get(gocv.VideoCaptureFrameHeight))
}

func (vs *VideoSource) Close() error {
	return vs.vc.Close()
}

// ImageSource yields a single still image once.
type ImageSource struct {
	img  gocv.Mat
	done bool
}

func (is *ImageSource) Read(frame *gocv.Mat) bool {
	if is.done {
		return false
	}
	is.done = true
	is.img.CopyTo(frame)
	return true
}

// FPS of a still image is reported as 1 so a sink can still be written.
func (is *ImageSource) FPS() float64 {
	return 1
}

func (is *ImageSource) Size() (int, int) {
	return is.img.Cols(), is.img.Rows()
}

func (is *ImageSource) Close() error {
	return is.img.Close()
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".tiff": true, ".tif": true, ".bmp": true,
}

// IsImagePath reports whether uri names a supported still image.
func IsImagePath(uri string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(uri))]
}

// OpenSource opens uri as a still image, a numeric capture device index or
// a video file, in that order of precedence. Failures wrap core.ErrInput.
func OpenSource(uri string, logger logrus.FieldLogger) (Source, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: no video source given", core.ErrInput)
	}
	logger.WithField("source", uri).Debug("Opening source")

	if IsImagePath(uri) {
		img := gocv.IMRead(uri, gocv.IMReadColor)
		if img.Empty() {
			img.Close()
			return nil, fmt.Errorf("%w: failed to load image: %s", core.ErrInput, uri)
		}
		info := core.Describe(img)
		logger.WithFields(logrus.Fields{
			"source":   uri,
			"size":     info.String(),
			"encoding": info.Encoding,
		}).Info("Image source opened")
		return &ImageSource{img: img}, nil
	}

	var (
		vc  *gocv.VideoCapture
		err error
	)
	if id, convErr := strconv.Atoi(uri); convErr == nil {
		vc, err = gocv.OpenVideoCapture(id)
	} else {
		vc, err = gocv.VideoCaptureFile(uri)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open video %s: %v", core.ErrInput, uri, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: cannot open video %s", core.ErrInput, uri)
	}

	vs := &VideoSource{vc: vc}
	w, h := vs.Size()
	logger.WithFields(logrus.Fields{
		"source": uri,
		"width":  w,
		"height": h,
		"fps":    vs.FPS(),
	}).Info("Video source opened")
	return vs, nil
}
