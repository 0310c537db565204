package metrics

import (
	"runtime"

	"github.com/sirupsen/logrus"
)

// MemorySnapshot is a point-in-time view of Go heap usage. Mat pixel
// buffers live in OpenCV's allocator and are not included.
type MemorySnapshot struct {
	AllocMB      float64 `json:"alloc_mb"`
	TotalAllocMB float64 `json:"total_alloc_mb"`
	SysMB        float64 `json:"sys_mb"`
	NumGC        uint32  `json:"num_gc"`
	Goroutines   int     `json:"goroutines"`
}

// ReadMemory samples the runtime without forcing a collection.
func ReadMemory() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemorySnapshot{
		AllocMB:      float64(m.Alloc) / 1024 / 1024,
		TotalAllocMB: float64(m.TotalAlloc) / 1024 / 1024,
		SysMB:        float64(m.Sys) / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
	}
}

// Fields renders the snapshot for structured logging.
func (s MemorySnapshot) Fields() logrus.Fields {
	return logrus.Fields{
		"alloc_mb":       s.AllocMB,
		"total_alloc_mb": s.TotalAllocMB,
		"sys_mb":         s.SysMB,
		"num_gc":         s.NumGC,
		"goroutines":     s.Goroutines,
	}
}
