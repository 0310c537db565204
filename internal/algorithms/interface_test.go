package algorithms

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type addStage struct {
	name  string
	delta float64
	err   error
}

func (s addStage) GetName() string { return s.name }

func (s addStage) Apply(input gocv.Mat) (gocv.Mat, error) {
	if s.err != nil {
		return gocv.NewMat(), s.err
	}
	out := gocv.NewMat()
	input.ConvertToWithParams(&out, input.Type(), 1, float32(s.delta))
	return out, nil
}

func TestChainRunsInOrder(t *testing.T) {
	var seen []string
	chain := NewChain(addStage{name: "a", delta: 1}, addStage{name: "b", delta: 2}).
		WithObserver(func(stage string, _ time.Duration) { seen = append(seen, stage) })

	input := gocv.Zeros(2, 2, gocv.MatTypeCV8UC1)
	defer input.Close()

	out, err := chain.Run(input)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, []string{"a", "b"}, chain.Names())
	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, uint8(3), out.GetUCharAt(0, 0))
	assert.Equal(t, uint8(0), input.GetUCharAt(0, 0), "input untouched")
}

func TestChainStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	chain := NewChain(addStage{name: "a", delta: 1}, addStage{name: "bad", err: boom}, addStage{name: "c"})

	input := gocv.Zeros(2, 2, gocv.MatTypeCV8UC1)
	defer input.Close()

	_, err := chain.Run(input)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad")
}

func TestChainEmptyInput(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	_, err := NewChain().Run(empty)
	assert.Error(t, err)
}
