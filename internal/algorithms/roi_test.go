package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"road-vision/internal/config"
)

func TestRegionOfInterestIdempotent(t *testing.T) {
	roi := NewRegionOfInterest(config.Default().ROI)

	for _, size := range [][2]int{{640, 480}, {1280, 720}, {33, 17}} {
		frame := gocv.NewMatWithSize(size[1], size[0], gocv.MatTypeCV8UC3)
		gocv.RandU(&frame, gocv.NewScalar(0, 0, 0, 0), gocv.NewScalar(256, 256, 256, 0))

		once, err := roi.Apply(frame)
		require.NoError(t, err)
		twice, err := roi.Apply(once)
		require.NoError(t, err)

		assert.Equal(t, once.ToBytes(), twice.ToBytes(), "ROI(ROI(F)) != ROI(F) for %dx%d", size[0], size[1])

		frame.Close()
		once.Close()
		twice.Close()
	}
}

func TestRegionOfInterestBlanksOutside(t *testing.T) {
	roi := NewRegionOfInterest(config.Default().ROI)

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(200, 200, 200, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	out, err := roi.Apply(frame)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, uint8(200), out.GetVecbAt(450, 320)[0], "road kept")
	assert.Equal(t, uint8(0), out.GetVecbAt(100, 320)[0], "sky removed")
	assert.Equal(t, uint8(0), out.GetVecbAt(300, 10)[0], "verge removed")
	assert.Equal(t, uint8(200), frame.GetVecbAt(100, 320)[0], "input untouched")
}

func TestRegionOfInterestSingleChannel(t *testing.T) {
	roi := NewRegionOfInterest(config.Default().ROI)

	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC1)
	defer mask.Close()

	out, err := roi.Apply(mask)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, 1, out.Channels())
	assert.Equal(t, uint8(255), out.GetUCharAt(450, 320))
	assert.Equal(t, uint8(0), out.GetUCharAt(0, 0))
}

func TestRegionOfInterestPolygonFollowsFrame(t *testing.T) {
	roi := NewRegionOfInterest(config.Default().ROI)
	poly := roi.Polygon(1000, 500)
	require.Len(t, poly, 4)
	assert.Equal(t, 450, poly[3].X)
	assert.Equal(t, 550, poly[2].X)
	assert.Equal(t, 300, poly[2].Y)
}
