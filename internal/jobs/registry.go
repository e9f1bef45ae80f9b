package jobs

import (
	"sync"
	"sync/atomic"
	"time"

	"platter/internal/progress"
)

// IDAllocator hands out process-wide unique, strictly increasing job ids.
type IDAllocator interface {
	Next() int64
}

// NewIDAllocator returns the default atomic-counter allocator.
func NewIDAllocator() IDAllocator {
	return &counterAllocator{}
}

type counterAllocator struct {
	last atomic.Int64
}

func (a *counterAllocator) Next() int64 {
	return a.last.Add(1)
}

// Registry owns the authoritative job list. The list lock guards only the
// slice; each job guards its own fields. The list lock is always released
// before a per-job lock is taken, so registry scans can never deadlock
// against job mutation.
type Registry struct {
	mu   sync.RWMutex
	jobs []*Job

	// createMu serializes find-or-create so concurrent callers cannot both
	// miss the find and create duplicates.
	createMu sync.Mutex

	ids       IDAllocator
	notify    *notifier
	clock     func() time.Time
	projector func() progress.Projector
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIDAllocator injects the id allocator (mockable for tests).
func WithIDAllocator(ids IDAllocator) RegistryOption {
	return func(r *Registry) {
		if ids != nil {
			r.ids = ids
		}
	}
}

// WithSink attaches the notification sink.
func WithSink(sink Sink) RegistryOption {
	return func(r *Registry) {
		r.notify.sink = sink
	}
}

// WithRecorder attaches the terminal-state recorder.
func WithRecorder(rec Recorder) RegistryOption {
	return func(r *Registry) {
		r.notify.recorder = rec
	}
}

// WithProjection selects the progress projection new jobs track ETA with.
// Unset, jobs use the tracker's default.
func WithProjection(strategy string, smoothing float64) RegistryOption {
	return func(r *Registry) {
		r.projector = func() progress.Projector {
			return progress.NewProjector(strategy, smoothing)
		}
	}
}

// WithRegistryClock injects a clock, primarily for tests.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.clock = now
			r.notify.now = now
		}
	}
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		ids:    NewIDAllocator(),
		clock:  time.Now,
		notify: &notifier{now: time.Now},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewJob creates a Pending job, appends it, and returns the shared handle.
func (r *Registry) NewJob(jobType Type, disc *DiscSnapshot) *Job {
	job := newJob(r.ids.Next(), jobType, disc, r.notify, r.clock, r.projector)

	r.mu.Lock()
	r.jobs = append(r.jobs, job)
	r.mu.Unlock()

	r.notify.listChanged()
	return job
}

// Get returns the job with the given id.
func (r *Registry) Get(id int64) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, job := range r.jobs {
		if job.ID() == id {
			return job, true
		}
	}
	return nil, false
}

// List returns the jobs newest-first.
func (r *Registry) List() []*Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listed := make([]*Job, len(r.jobs))
	for i, job := range r.jobs {
		listed[len(r.jobs)-1-i] = job
	}
	return listed
}

// Len returns the number of jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// FindJob returns the first job matching all given criteria. A nil discID
// matches only jobs with no associated disc; a non-nil discID matches only
// jobs whose disc id equals it. A nil jobType matches any type. An empty
// status set matches any status.
func (r *Registry) FindJob(discID *int64, jobType *Type, statuses ...Status) (*Job, bool) {
	statusSet := make(map[Status]struct{}, len(statuses))
	for _, status := range statuses {
		statusSet[status] = struct{}{}
	}

	r.mu.RLock()
	candidates := make([]*Job, len(r.jobs))
	copy(candidates, r.jobs)
	r.mu.RUnlock()

	for _, job := range candidates {
		if job.matches(discID, jobType, statusSet) {
			return job, true
		}
	}
	return nil, false
}

// FindOrCreateJob returns the first job matching the find rule, creating one
// when none exists. The boolean reports whether a job was created, so callers
// know whether to broadcast a list change beyond the per-job update.
func (r *Registry) FindOrCreateJob(discID *int64, disc *DiscSnapshot, jobType Type, statuses ...Status) (*Job, bool) {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	if job, ok := r.FindJob(discID, &jobType, statuses...); ok {
		return job, false
	}
	return r.NewJob(jobType, disc), true
}

// Delete removes the job with the given id.
func (r *Registry) Delete(id int64) bool {
	r.mu.Lock()
	removed := false
	for i, job := range r.jobs {
		if job.ID() == id {
			r.jobs = append(r.jobs[:i], r.jobs[i+1:]...)
			removed = true
			break
		}
	}
	r.mu.Unlock()

	if removed {
		r.notify.listChanged()
	}
	return removed
}
