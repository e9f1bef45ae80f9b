package progress

import "strings"

// DefaultSmoothing is the smoothing strength applied when none is configured.
// Larger values adapt more slowly and yield a steadier ETA; smaller values
// react faster to recent rate changes.
const DefaultSmoothing = 0.1

// Projector smooths a raw progress signal into a projection suitable for
// rate and ETA estimation.
type Projector interface {
	// Start resets the projector's samples to the given position and zeroes
	// the projection.
	Start(at float64)
	// SetProgress feeds the next raw progress sample.
	SetProgress(value float64)
	// Progress returns the current projection.
	Progress() float64
	// None reports whether the projector has produced no usable signal yet.
	None() bool
}

// NewProjector selects a projector implementation by name. Unknown names fall
// back to the smoothed-average implementation; the permissive default is
// intentional so callers never have to handle a missing strategy.
func NewProjector(strategy string, smoothing float64) Projector {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", "smoothed":
		return newSmoothedAverage(smoothing)
	default:
		return newSmoothedAverage(smoothing)
	}
}

// smoothedAverage keeps an exponentially weighted projection of the progress
// delta between consecutive samples.
type smoothedAverage struct {
	previous   float64
	current    float64
	projection float64
	strength   float64
}

func newSmoothedAverage(strength float64) *smoothedAverage {
	if strength <= 0 || strength >= 1 {
		strength = DefaultSmoothing
	}
	return &smoothedAverage{strength: strength}
}

func (s *smoothedAverage) Start(at float64) {
	s.previous = at
	s.current = at
	s.projection = 0
}

func (s *smoothedAverage) SetProgress(value float64) {
	s.previous = s.current
	s.current = value
	delta := s.current - s.previous
	s.projection = delta*(1-s.strength) + s.projection*s.strength
}

func (s *smoothedAverage) Progress() float64 {
	return s.projection
}

func (s *smoothedAverage) None() bool {
	return s.projection == 0
}
