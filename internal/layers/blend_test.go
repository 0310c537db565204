package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"road-vision/internal/config"
)

func TestCompositorWeightedSum(t *testing.T) {
	c := NewCompositor(config.Default().Lane)

	overlay := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(100, 0, 0, 0), 4, 4, gocv.MatTypeCV8UC3)
	defer overlay.Close()
	source := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(20, 50, 0, 0), 4, 4, gocv.MatTypeCV8UC3)
	defer source.Close()

	out, err := c.Blend(overlay, source)
	require.NoError(t, err)
	defer out.Close()

	px := out.GetVecbAt(1, 1)
	assert.Equal(t, uint8(100), px[0], "0.8*100 + 1.0*20")
	assert.Equal(t, uint8(50), px[1], "0.8*0 + 1.0*50")
	assert.Equal(t, uint8(0), px[2])
	assert.Equal(t, uint8(100), overlay.GetVecbAt(1, 1)[0], "overlay untouched")
	assert.Equal(t, uint8(20), source.GetVecbAt(1, 1)[0], "source untouched")
}

func TestCompositorSaturates(t *testing.T) {
	c := NewCompositor(config.Default().Lane)

	overlay := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 2, 2, gocv.MatTypeCV8UC3)
	defer overlay.Close()
	source := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(200, 200, 200, 0), 2, 2, gocv.MatTypeCV8UC3)
	defer source.Close()

	out, err := c.Blend(overlay, source)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, uint8(255), out.GetVecbAt(0, 0)[0])
}

func TestCompositorRejectsMismatch(t *testing.T) {
	c := NewCompositor(config.Default().Lane)

	a := gocv.Zeros(2, 2, gocv.MatTypeCV8UC3)
	defer a.Close()
	b := gocv.Zeros(3, 2, gocv.MatTypeCV8UC3)
	defer b.Close()
	g := gocv.Zeros(2, 2, gocv.MatTypeCV8UC1)
	defer g.Close()

	_, err := c.Blend(a, b)
	assert.Error(t, err)
	_, err = c.Blend(a, g)
	assert.Error(t, err)
}
