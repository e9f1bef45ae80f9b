package jobs

import (
	"fmt"
	"sync"
	"time"

	"platter/internal/media"
	"platter/internal/progress"
)

// Type is the kind of background work a job performs.
type Type string

const (
	TypeLoading   Type = "loading"
	TypeRipping   Type = "ripping"
	TypeUploading Type = "uploading"
)

// Status is the job lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusReady      Status = "ready"
	StatusProcessing Status = "processing"
	StatusFinished   Status = "finished"
	StatusError      Status = "error"
)

// Completed reports whether the status is terminal.
func (s Status) Completed() bool {
	return s == StatusFinished || s == StatusError
}

// Modifiable reports whether titles/videos may still be attached.
func (s Status) Modifiable() bool {
	return s == StatusPending || s == StatusReady
}

// DiscSnapshot captures the source disc a job is working from.
type DiscSnapshot struct {
	ID     int64
	Label  string
	Device string
}

// NotModifiableError is returned when a mutation is attempted on a job that
// has started or finished. It is a local, recoverable failure.
type NotModifiableError struct {
	Action string
	Status Status
}

func (e *NotModifiableError) Error() string {
	return fmt.Sprintf("cannot %s: job is %s", e.Action, e.Status)
}

// Snapshot is a read-only copy of a job's observable state, handed to sinks
// and recorders.
type Snapshot struct {
	ID       int64
	Type     Type
	Status   Status
	Title    string
	Subtitle string
	Message  string
	Percent  int
	ETA      string
	Disc     *DiscSnapshot
	Videos   []media.Video
}

// Job is one unit of background work. All field access goes through its own
// lock; callers must never hold the registry list lock while calling into a
// job, and job methods release the lock before dispatching notifications.
type Job struct {
	mu       sync.RWMutex
	id       int64
	jobType  Type
	status   Status
	title    string
	subtitle string
	message  string
	tracker  *progress.Tracker
	disc     *DiscSnapshot
	videos   []media.Video
	lastEmit time.Time
	notify   *notifier
}

func newJob(id int64, jobType Type, disc *DiscSnapshot, notify *notifier, clock func() time.Time, projector func() progress.Projector) *Job {
	trackerOpts := []progress.TrackerOption{progress.WithClock(clock)}
	if projector != nil {
		trackerOpts = append(trackerOpts, progress.WithProjector(projector()))
	}
	return &Job{
		id:      id,
		jobType: jobType,
		status:  StatusPending,
		disc:    disc,
		tracker: progress.NewTracker(100, trackerOpts...),
		notify:  notify,
	}
}

// ID returns the process-wide unique job id.
func (j *Job) ID() int64 {
	return j.id
}

// Type returns the job kind.
func (j *Job) Type() Type {
	return j.jobType
}

// Status returns the current lifecycle state.
func (j *Job) Status() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// IsCompleted reports whether the job reached a terminal state.
func (j *Job) IsCompleted() bool {
	return j.Status().Completed()
}

// Disc returns the associated disc snapshot, nil when the job has none.
func (j *Job) Disc() *DiscSnapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.disc
}

// Title returns the human-readable title.
func (j *Job) Title() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.title
}

// Message returns the latest status message.
func (j *Job) Message() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.message
}

// Videos returns a copy of the attached title videos.
func (j *Job) Videos() []media.Video {
	j.mu.RLock()
	defer j.mu.RUnlock()
	videos := make([]media.Video, len(j.videos))
	copy(videos, j.videos)
	return videos
}

// Percent returns the completed percentage.
func (j *Job) Percent() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.tracker.Percentage()
}

// ETA returns the formatted time-remaining estimate.
func (j *Job) ETA() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.tracker.ETA()
}

// SetTitle updates the job title.
func (j *Job) SetTitle(title string) {
	j.mu.Lock()
	j.title = title
	snap, emit := j.emitLocked(false)
	j.mu.Unlock()
	j.dispatch(snap, emit, false)
}

// SetSubtitle updates the job subtitle.
func (j *Job) SetSubtitle(subtitle string) {
	j.mu.Lock()
	j.subtitle = subtitle
	snap, emit := j.emitLocked(false)
	j.mu.Unlock()
	j.dispatch(snap, emit, false)
}

// SetMessage updates the status message.
func (j *Job) SetMessage(message string) {
	j.mu.Lock()
	j.message = message
	snap, emit := j.emitLocked(false)
	j.mu.Unlock()
	j.dispatch(snap, emit, false)
}

// AttachVideo adds a title video to the job. The first attachment moves a
// Pending job to Ready. Attaching to a started or finished job fails with
// NotModifiableError and leaves the job unchanged.
func (j *Job) AttachVideo(video media.Video) error {
	j.mu.Lock()
	if !j.status.Modifiable() {
		status := j.status
		j.mu.Unlock()
		return &NotModifiableError{Action: "attach video", Status: status}
	}
	j.videos = append(j.videos, video)
	transition := false
	if j.status == StatusPending {
		j.status = StatusReady
		transition = true
	}
	snap, emit := j.emitLocked(transition)
	j.mu.Unlock()
	j.dispatch(snap, emit, transition)
	return nil
}

// UpdateStatus moves the job to the given state. Entering Processing starts
// the progress timer; terminal states freeze progress at 100% and clear the
// ETA to its placeholder. Terminal states are final: calls on a Finished or
// Error job are ignored, callers that need to retry create a new job.
func (j *Job) UpdateStatus(status Status) {
	j.mu.Lock()
	prev := j.status
	if prev.Completed() {
		j.mu.Unlock()
		return
	}
	j.status = status
	switch {
	case status == StatusProcessing && prev != StatusProcessing:
		j.tracker.Start(j.tracker.Progress())
	case status.Completed():
		j.tracker.Finish()
	}
	snap, emit := j.emitLocked(prev != status)
	j.mu.Unlock()
	j.dispatch(snap, emit, prev != status)
}

// Fail moves the job to Error with the given message. Like UpdateStatus it
// is a no-op on a job already in a terminal state.
func (j *Job) Fail(message string) {
	j.mu.Lock()
	prev := j.status
	if prev.Completed() {
		j.mu.Unlock()
		return
	}
	j.status = StatusError
	j.message = message
	j.tracker.Finish()
	snap, emit := j.emitLocked(prev != StatusError)
	j.mu.Unlock()
	j.dispatch(snap, emit, prev != StatusError)
}

// StartProgress resizes the tracker and starts timing from zero.
func (j *Job) StartProgress(total float64) {
	j.mu.Lock()
	j.tracker.SetTotal(total)
	j.tracker.Start(0)
	snap, emit := j.emitLocked(false)
	j.mu.Unlock()
	j.dispatch(snap, emit, false)
}

// SetProgress records a new raw progress position.
func (j *Job) SetProgress(value float64) {
	j.mu.Lock()
	j.tracker.SetProgress(value)
	snap, emit := j.emitLocked(false)
	j.mu.Unlock()
	j.dispatch(snap, emit, false)
}

// SetProgressTotal resizes the tracker without restarting the timer.
func (j *Job) SetProgressTotal(total float64) {
	j.mu.Lock()
	j.tracker.SetTotal(total)
	snap, emit := j.emitLocked(false)
	j.mu.Unlock()
	j.dispatch(snap, emit, false)
}

// Snapshot returns a copy of the observable state.
func (j *Job) Snapshot() Snapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.snapshotLocked()
}

func (j *Job) snapshotLocked() Snapshot {
	videos := make([]media.Video, len(j.videos))
	copy(videos, j.videos)
	var disc *DiscSnapshot
	if j.disc != nil {
		clone := *j.disc
		disc = &clone
	}
	percent := j.tracker.Percentage()
	eta := j.tracker.ETA()
	if j.status.Completed() {
		percent = 100
		eta = progress.NoETA
	}
	return Snapshot{
		ID:       j.id,
		Type:     j.jobType,
		Status:   j.status,
		Title:    j.title,
		Subtitle: j.subtitle,
		Message:  j.message,
		Percent:  percent,
		ETA:      eta,
		Disc:     disc,
		Videos:   videos,
	}
}

// emitLocked decides whether the pending change should be delivered, applying
// the one-per-second throttle to non-transition updates. Must be called with
// the write lock held.
func (j *Job) emitLocked(transition bool) (Snapshot, bool) {
	if j.notify == nil {
		return Snapshot{}, false
	}
	now := j.notify.now()
	if !transition && now.Sub(j.lastEmit) < emitInterval {
		return Snapshot{}, false
	}
	j.lastEmit = now
	return j.snapshotLocked(), true
}

func (j *Job) dispatch(snap Snapshot, emit, transition bool) {
	if !emit || j.notify == nil {
		return
	}
	j.notify.jobUpdated(snap, transition)
}

// matches evaluates the registry's find rule against this job.
func (j *Job) matches(discID *int64, jobType *Type, statuses map[Status]struct{}) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if jobType != nil && j.jobType != *jobType {
		return false
	}
	if discID == nil {
		if j.disc != nil {
			return false
		}
	} else {
		if j.disc == nil || j.disc.ID != *discID {
			return false
		}
	}
	if len(statuses) > 0 {
		if _, ok := statuses[j.status]; !ok {
			return false
		}
	}
	return true
}
