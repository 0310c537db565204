// Frame-to-frame processing stages and the chain that sequences them
package algorithms

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"
)

// Stage is one pure frame transformation. Apply never modifies input; the
// returned Mat is owned by the caller.
type Stage interface {
	Apply(input gocv.Mat) (gocv.Mat, error)
	GetName() string
}

// Observer receives the wall time spent in each stage.
type Observer func(stage string, elapsed time.Duration)

// Chain runs stages strictly in order, each consuming the previous output.
type Chain struct {
	stages  []Stage
	observe Observer
}

// NewChain builds a chain over the given stages.
func NewChain(stages ...Stage) *Chain {
	return &Chain{stages: stages}
}

// WithObserver installs a timing observer and returns the chain.
func (c *Chain) WithObserver(o Observer) *Chain {
	c.observe = o
	return c
}

// Names returns the stage names in execution order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.GetName()
	}
	return names
}

// Run applies every stage. Intermediate Mats are released as soon as the
// next stage has consumed them; input is left untouched.
func (c *Chain) Run(input gocv.Mat) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	current := input
	owned := false

	for _, stage := range c.stages {
		start := time.Now()
		next, err := stage.Apply(current)
		if c.observe != nil {
			c.observe(stage.GetName(), time.Since(start))
		}

		if owned {
			current.Close()
		}
		if err != nil {
			next.Close()
			return gocv.NewMat(), fmt.Errorf("%s: %w", stage.GetName(), err)
		}

		current = next
		owned = true
	}

	if !owned {
		return input.Clone(), nil
	}
	return current, nil
}
