package jobs

import "time"

// emitInterval is the minimum spacing between rate-limited progress
// notifications for a single job. State transitions bypass it.
const emitInterval = time.Second

// Sink receives observable job state on behalf of the UI layer. Calls happen
// whenever a job's state changes, throttled to once per second per job for
// plain progress updates; transitions are always delivered.
type Sink interface {
	// JobUpdated delivers a fresh snapshot of a single job.
	JobUpdated(Snapshot)
	// JobListChanged signals that jobs were added or removed.
	JobListChanged()
}

// Recorder observes jobs reaching a terminal state.
type Recorder interface {
	JobCompleted(Snapshot)
}

type notifier struct {
	sink     Sink
	recorder Recorder
	now      func() time.Time
}

func (n *notifier) jobUpdated(snap Snapshot, transition bool) {
	if n.sink != nil {
		n.sink.JobUpdated(snap)
	}
	if transition && snap.Status.Completed() && n.recorder != nil {
		n.recorder.JobCompleted(snap)
	}
}

func (n *notifier) listChanged() {
	if n.sink != nil {
		n.sink.JobListChanged()
	}
}
