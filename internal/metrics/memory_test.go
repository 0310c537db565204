package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadMemory(t *testing.T) {
	s := ReadMemory()

	assert.Greater(t, s.SysMB, 0.0)
	assert.GreaterOrEqual(t, s.TotalAllocMB, s.AllocMB)
	assert.GreaterOrEqual(t, s.Goroutines, 1)

	fields := s.Fields()
	assert.Contains(t, fields, "alloc_mb")
	assert.Equal(t, s.Goroutines, fields["goroutines"])
}
