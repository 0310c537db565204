// Package pipeline drives the per-frame loop: read, lane overlay, object
// detection, annotation, then sink, display and preview output.
package pipeline

// State is owned by the driver and only changes between frames.
type State struct {
	Frames     int
	Features   bool
	Running    bool
	SinkErrors int
	LastFPS    int
}

// NewState returns the state at startup: features on, running.
func NewState() State {
	return State{Features: true, Running: true}
}

// ToggleFeatures flips lane and detector processing and returns the new value.
func (s *State) ToggleFeatures() bool {
	s.Features = !s.Features
	return s.Features
}

// Stop marks the loop for exit after the current frame.
func (s *State) Stop() {
	s.Running = false
}
