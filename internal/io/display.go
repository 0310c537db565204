package io

import (
	"gocv.io/x/gocv"
)

// Key codes returned by PollKey.
const (
	KeyNone  = -1
	KeyEsc   = 27
	KeySpace = 32
	KeyQuit  = 'q'
)

const (
	MainWindowName         = "Road Vision"
	IntermediateWindowName = "Intermediate Results"
)

// Display shows frames and reports key presses.
type Display interface {
	Show(frame gocv.Mat)
	ShowIntermediate(frame gocv.Mat)
	PollKey(delayMS int) int
	Close() error
}

// NewDisplay returns a HighGUI display, or a no-op one when headless. The
// intermediate window only exists when show is set.
func NewDisplay(show, headless bool) Display {
	if headless {
		return nullDisplay{}
	}

	d := &windowDisplay{main: gocv.NewWindow(MainWindowName)}
	if show {
		d.intermediate = gocv.NewWindow(IntermediateWindowName)
	}
	return d
}

type windowDisplay struct {
	main         *gocv.Window
	intermediate *gocv.Window
}

func (d *windowDisplay) Show(frame gocv.Mat) {
	d.main.IMShow(frame)
}

func (d *windowDisplay) ShowIntermediate(frame gocv.Mat) {
	if d.intermediate != nil && !frame.Empty() {
		d.intermediate.IMShow(frame)
	}
}

func (d *windowDisplay) PollKey(delayMS int) int {
	key := d.main.WaitKey(delayMS)
	if key < 0 {
		return KeyNone
	}
	return key & 0xff
}

func (d *windowDisplay) Close() error {
	if d.intermediate != nil {
		d.intermediate.Close()
	}
	return d.main.Close()
}

type nullDisplay struct{}

func (nullDisplay) Show(gocv.Mat)             {}
func (nullDisplay) ShowIntermediate(gocv.Mat) {}
func (nullDisplay) PollKey(int) int           { return KeyNone }
func (nullDisplay) Close() error              { return nil }
