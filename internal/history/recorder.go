package history

import (
	"context"
	"log/slog"
	"time"

	"platter/internal/jobs"
	"platter/internal/logging"
)

// Recorder adapts the ledger to the registry's completion hook. Writes
// happen on the notifying goroutine, so they stay short and never block on
// anything but the database itself.
type Recorder struct {
	store  *Store
	runID  string
	logger *slog.Logger
	now    func() time.Time
}

var _ jobs.Recorder = (*Recorder)(nil)

// NewRecorder wires a completion recorder for the given run.
func NewRecorder(store *Store, runID string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Recorder{
		store:  store,
		runID:  runID,
		logger: logging.NewComponentLogger(logger, "history"),
		now:    time.Now,
	}
}

// JobCompleted persists the terminal snapshot. Failures are logged, never
// propagated; the job itself already finished.
func (r *Recorder) JobCompleted(snap jobs.Snapshot) {
	if r == nil || r.store == nil {
		return
	}
	finished := r.now().UTC()
	err := r.store.RecordCompleted(context.Background(), Record{
		JobID:      snap.ID,
		RunID:      r.runID,
		Type:       string(snap.Type),
		Title:      snap.Title,
		Status:     string(snap.Status),
		Message:    snap.Message,
		FinishedAt: finished,
	})
	if err != nil {
		r.logger.Error("could not record completed job",
			logging.Int64("job_id", snap.ID),
			logging.Error(err))
	}
}
