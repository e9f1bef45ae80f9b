package progress

import "time"

// Timer measures elapsed wall time for a long-running operation. Stopping and
// restarting the timer excludes the paused interval from the elapsed total,
// so ETA math never charges a job for time it spent idle.
type Timer struct {
	startedAt time.Time
	stoppedAt time.Time
	now       func() time.Time
}

// TimerOption configures a Timer.
type TimerOption func(*Timer)

// WithTimerClock injects a clock, primarily for tests.
func WithTimerClock(now func() time.Time) TimerOption {
	return func(t *Timer) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTimer constructs an unstarted timer.
func NewTimer(opts ...TimerOption) *Timer {
	t := &Timer{now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins or resumes timing. Resuming after a stop shifts the recorded
// start instant forward by the paused duration. Calling Start on a running
// timer is a no-op.
func (t *Timer) Start() {
	switch {
	case t.startedAt.IsZero():
		t.startedAt = t.now()
	case !t.stoppedAt.IsZero():
		paused := t.now().Sub(t.stoppedAt)
		t.startedAt = t.startedAt.Add(paused)
		t.stoppedAt = time.Time{}
	}
}

// Stop freezes the timer at the current instant. Stopping an unstarted or
// already stopped timer is a no-op.
func (t *Timer) Stop() {
	if t.startedAt.IsZero() || !t.stoppedAt.IsZero() {
		return
	}
	t.stoppedAt = t.now()
}

// Reset returns the timer to its unstarted state.
func (t *Timer) Reset() {
	t.startedAt = time.Time{}
	t.stoppedAt = time.Time{}
}

// Started reports whether the timer has ever been started.
func (t *Timer) Started() bool {
	return !t.startedAt.IsZero()
}

// Running reports whether the timer is started and not stopped.
func (t *Timer) Running() bool {
	return t.Started() && t.stoppedAt.IsZero()
}

// ElapsedSeconds returns seconds between the start instant and now (or the
// stop instant when stopped). An unstarted timer reports zero.
func (t *Timer) ElapsedSeconds() float64 {
	if t.startedAt.IsZero() {
		return 0
	}
	end := t.stoppedAt
	if end.IsZero() {
		end = t.now()
	}
	return end.Sub(t.startedAt).Seconds()
}
