package progress

import (
	"fmt"
	"math"
	"time"
)

const (
	// NoETA is rendered whenever no estimate can be computed yet.
	NoETA = "--:--:--"
	// OutOfBoundsETA replaces estimates beyond 99 hours.
	OutOfBoundsETA = ">99:59:59"
	// etaHourBound is the largest hour value rendered literally.
	etaHourBound = 99
)

// Tracker combines a timer and a projector into the progress state carried by
// a job: raw position, derived percentage, and a formatted ETA.
type Tracker struct {
	total            float64
	progress         float64
	startingPosition float64
	timer            *Timer
	projector        Projector
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithProjector overrides the default smoothed projector.
func WithProjector(p Projector) TrackerOption {
	return func(t *Tracker) {
		if p != nil {
			t.projector = p
		}
	}
}

// WithClock injects the timer clock, primarily for tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.timer = NewTimer(WithTimerClock(now))
	}
}

// NewTracker constructs a tracker for a unit of work of the given size.
func NewTracker(total float64, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		total:     total,
		timer:     NewTimer(),
		projector: NewProjector("", DefaultSmoothing),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins timing from the given position.
func (t *Tracker) Start(at float64) {
	t.startingPosition = at
	t.progress = at
	t.projector.Start(at)
	t.timer.Start()
}

// SetTotal replaces the work size, clamping progress into the new range.
func (t *Tracker) SetTotal(total float64) {
	if total < 0 {
		total = 0
	}
	t.total = total
	if t.progress > t.total {
		t.progress = t.total
	}
}

// Total returns the work size.
func (t *Tracker) Total() float64 {
	return t.total
}

// SetProgress records a new raw position and feeds the projector.
func (t *Tracker) SetProgress(value float64) {
	if value < 0 {
		value = 0
	}
	if t.total > 0 && value > t.total {
		value = t.total
	}
	t.progress = value
	t.projector.SetProgress(value)
}

// Progress returns the raw position.
func (t *Tracker) Progress() float64 {
	return t.progress
}

// Finish moves progress to the total and stops the timer.
func (t *Tracker) Finish() {
	t.progress = t.total
	t.timer.Stop()
}

// Stop pauses the timer without touching progress.
func (t *Tracker) Stop() {
	t.timer.Stop()
}

// Resume restarts the timer, excluding the pause from elapsed time.
func (t *Tracker) Resume() {
	t.timer.Start()
}

// ElapsedSeconds exposes the underlying timer reading.
func (t *Tracker) ElapsedSeconds() float64 {
	return t.timer.ElapsedSeconds()
}

// Percentage returns the completed share as a whole number in [0,100].
// A zero-sized job is trivially complete.
func (t *Tracker) Percentage() int {
	if t.total == 0 {
		return 100
	}
	return int(math.Floor(t.progress * 100 / t.total))
}

// ETA renders the estimated time remaining as H:MM:SS. It returns NoETA when
// the projector has no signal, progress is at zero, or the timer is not
// running, and OutOfBoundsETA when the estimate exceeds 99 hours.
func (t *Tracker) ETA() string {
	if t.projector.None() || t.progress == 0 || !t.timer.Running() {
		return NoETA
	}
	projected := t.projector.Progress()
	if projected == 0 {
		return NoETA
	}
	remaining := t.timer.ElapsedSeconds() * (t.total/projected - 1)
	if remaining < 0 {
		remaining = 0
	}
	seconds := int64(math.Round(remaining))
	hours := seconds / 3600
	if hours > etaHourBound {
		return OutOfBoundsETA
	}
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds%60)
}
