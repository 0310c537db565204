package lane

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"road-vision/internal/config"
	"road-vision/internal/core"
)

type drawCall struct {
	op        string
	poly      core.Polygon
	a, b      image.Point
	color     color.RGBA
	thickness int
}

type recordingCanvas struct {
	calls   []drawCall
	fillErr error
}

func (r *recordingCanvas) FillPoly(poly core.Polygon, c color.RGBA) error {
	r.calls = append(r.calls, drawCall{op: "fill", poly: poly, color: c})
	return r.fillErr
}

func (r *recordingCanvas) Line(a, b image.Point, c color.RGBA, thickness int) {
	r.calls = append(r.calls, drawCall{op: "line", a: a, b: b, color: c, thickness: thickness})
}

func bothSides() Estimate {
	return Estimate{
		Left:  &Model{Side: Left, Slope: -0.8, Intercept: 538, Near: Point{282.5, 312}, Far: Point{72.5, 480}},
		Right: &Model{Side: Right, Slope: 0.8, Intercept: 26, Near: Point{357.5, 312}, Far: Point{567.5, 480}},
	}
}

func TestDrawOverlayBothSides(t *testing.T) {
	rc := &recordingCanvas{}
	style := DefaultStyle(5)

	require.NoError(t, DrawOverlay(rc, bothSides(), style))

	require.Len(t, rc.calls, 3)
	assert.Equal(t, "fill", rc.calls[0].op)
	assert.Len(t, rc.calls[0].poly, 4)
	assert.Equal(t, style.Fill, rc.calls[0].color)

	assert.Equal(t, "line", rc.calls[1].op)
	assert.Equal(t, image.Pt(283, 312), rc.calls[1].a)
	assert.Equal(t, image.Pt(73, 480), rc.calls[1].b)
	assert.Equal(t, 5, rc.calls[1].thickness)

	assert.Equal(t, "line", rc.calls[2].op)
	assert.Equal(t, image.Pt(358, 312), rc.calls[2].a)
}

func TestDrawOverlayOneSide(t *testing.T) {
	est := bothSides()
	est.Left = nil

	rc := &recordingCanvas{}
	require.NoError(t, DrawOverlay(rc, est, DefaultStyle(5)))

	require.Len(t, rc.calls, 1, "no polygon without both boundaries")
	assert.Equal(t, "line", rc.calls[0].op)
	assert.Equal(t, image.Pt(568, 480), rc.calls[0].b)
}

func TestDrawOverlayEmpty(t *testing.T) {
	rc := &recordingCanvas{}
	require.NoError(t, DrawOverlay(rc, Estimate{}, DefaultStyle(5)))
	assert.Empty(t, rc.calls)
}

func TestMatCanvasFillsQuad(t *testing.T) {
	mat := gocv.Zeros(480, 640, gocv.MatTypeCV8UC3)
	defer mat.Close()

	require.NoError(t, DrawOverlay(MatCanvas{Mat: &mat}, bothSides(), DefaultStyle(5)))

	// Inside the road quad, away from the boundary lines.
	px := mat.GetVecbAt(420, 320)
	assert.Equal(t, uint8(255), px[0], "blue channel")
	assert.Equal(t, uint8(0), px[1])
	assert.Equal(t, uint8(0), px[2])

	// Outside the quad.
	assert.Equal(t, uint8(0), mat.GetVecbAt(100, 20)[0])
}

func TestDrawOverlayFillFailure(t *testing.T) {
	boom := errors.New("fill failed")
	rc := &recordingCanvas{fillErr: boom}

	err := DrawOverlay(rc, bothSides(), DefaultStyle(5))
	require.ErrorIs(t, err, boom)
	assert.Len(t, rc.calls, 1, "boundary lines are skipped after a failed fill")
}

func TestMatCanvasRejectsDegeneratePolygon(t *testing.T) {
	mat := gocv.Zeros(10, 10, gocv.MatTypeCV8UC3)
	defer mat.Close()

	err := MatCanvas{Mat: &mat}.FillPoly(core.Polygon{{0, 0}, {5, 5}}, color.RGBA{B: 255, A: 255})
	assert.Error(t, err)
}

func TestDrawOverlayDegenerateFitStaysFinite(t *testing.T) {
	f := NewFitter(config.Default().Lane)

	// Right side only, plus segments that would divide by zero.
	est := f.Fit([]core.LineSegment{
		core.Seg(800, 550, 900, 650),
		core.Seg(300, 100, 300, 400),
		core.Seg(200, 200, 200, 200),
	}, 1000, 1000)
	require.Nil(t, est.Left)
	require.NotNil(t, est.Right)

	rc := &recordingCanvas{}
	require.NoError(t, DrawOverlay(rc, est, DefaultStyle(5)))

	require.Len(t, rc.calls, 1)
	for _, c := range rc.calls {
		assert.Empty(t, c.poly)
		for _, p := range []image.Point{c.a, c.b} {
			assert.InDelta(t, 0, p.X, 10000)
			assert.InDelta(t, 0, p.Y, 10000)
		}
	}
	assert.Equal(t, image.Pt(900, 650), rc.calls[0].a)
	assert.Equal(t, image.Pt(1250, 1000), rc.calls[0].b)
}
