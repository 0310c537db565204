// Core frame metadata and validation shared by every pipeline stage
package core

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Encoding tags the channel layout of a frame's pixel buffer.
type Encoding string

const (
	EncodingBGR  Encoding = "bgr"
	EncodingGray Encoding = "gray"
	EncodingBGRA Encoding = "bgra"
)

// FrameInfo describes a frame without owning its pixels. The pixel buffer
// itself is a gocv.Mat; stages never write into a Mat they were given and
// always hand back a freshly allocated one.
type FrameInfo struct {
	Width    int
	Height   int
	Channels int
	Encoding Encoding
}

// Describe returns the metadata for mat, guessing the encoding from the
// channel count (OpenCV frames are BGR unless a stage says otherwise).
func Describe(mat gocv.Mat) FrameInfo {
	info := FrameInfo{
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
	}

	switch info.Channels {
	case 1:
		info.Encoding = EncodingGray
	case 4:
		info.Encoding = EncodingBGRA
	default:
		info.Encoding = EncodingBGR
	}
	return info
}

// String renders the frame size as WxH.
func (fi FrameInfo) String() string {
	return fmt.Sprintf("%dx%d", fi.Width, fi.Height)
}

// ValidateFrame validates an OpenCV Mat for basic requirements
func ValidateFrame(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("frame is empty")
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	channels := mat.Channels()
	if channels != 1 && channels != 3 && channels != 4 {
		return fmt.Errorf("unsupported channel count: %d", channels)
	}

	// Guard against absurd sizes before allocating per-stage buffers
	const maxDimension = 16384
	if mat.Cols() > maxDimension || mat.Rows() > maxDimension {
		return fmt.Errorf("frame too large: %dx%d (max: %d)", mat.Cols(), mat.Rows(), maxDimension)
	}

	return nil
}

// ValidateColorFrame is ValidateFrame restricted to 3-channel BGR input.
func ValidateColorFrame(mat gocv.Mat) error {
	if err := ValidateFrame(mat); err != nil {
		return err
	}
	if mat.Channels() != 3 {
		return fmt.Errorf("expected a 3-channel BGR frame, got %d channels", mat.Channels())
	}
	return nil
}
