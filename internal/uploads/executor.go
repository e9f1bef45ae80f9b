package uploads

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"platter/internal/jobs"
	"platter/internal/logging"
	"platter/internal/media"
	"platter/internal/uploader"
)

// Executor drives a single upload attempt end to end: job bookkeeping, the
// transfer itself, and the durable queue update. There is no in-process
// retry; a failed upload stays queued and is replayed on the next boot.
type Executor struct {
	registry  *jobs.Registry
	queue     *Queue
	transport uploader.Transport
	moviesDir string
	tvDir     string
	logger    *slog.Logger

	// removeFile is swappable for tests.
	removeFile func(string) error
}

// NewExecutor wires an executor.
func NewExecutor(registry *jobs.Registry, queue *Queue, transport uploader.Transport, moviesDir, tvDir string, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{
		registry:   registry,
		queue:      queue,
		transport:  transport,
		moviesDir:  moviesDir,
		tvDir:      tvDir,
		logger:     logging.NewComponentLogger(logger, "upload"),
		removeFile: os.Remove,
	}
}

// Upload performs one attempt for the given pending entry. It reuses an
// existing pending upload job when the registry has one, marks it Processing,
// transfers, and on success removes the queue entry and deletes the local
// file. On failure the job is marked Error and the entry stays queued for the
// next boot.
func (e *Executor) Upload(ctx context.Context, pending Pending, video media.Video) error {
	job, created := e.registry.FindOrCreateJob(nil, nil, jobs.TypeUploading, jobs.StatusPending, jobs.StatusReady)
	if created {
		e.logger.Debug("created upload job", logging.Int64("job_id", job.ID()))
	}
	if err := job.AttachVideo(video); err != nil {
		// The reused job already started; surface and bail without touching it.
		return fmt.Errorf("attach video: %w", err)
	}
	job.SetTitle(video.DisplayName())
	job.UpdateStatus(jobs.StatusProcessing)
	job.SetMessage("Uploading " + video.FileName())

	remotePath := video.RemotePath(e.moviesDir, e.tvDir)
	if err := e.transport.Upload(ctx, pending.VideoPath, remotePath); err != nil {
		job.Fail(fmt.Sprintf("upload failed: %v", err))
		e.logger.Error("upload failed",
			logging.Int64("job_id", job.ID()),
			logging.String("video_path", pending.VideoPath),
			logging.String("remote_path", remotePath),
			logging.Error(err))
		return fmt.Errorf("upload %s: %w", pending.VideoPath, err)
	}

	if err := e.queue.Remove(pending.VideoPath); err != nil {
		job.Fail(fmt.Sprintf("uploaded but could not update queue: %v", err))
		return fmt.Errorf("dequeue %s: %w", pending.VideoPath, err)
	}
	if err := e.removeFile(pending.VideoPath); err != nil && !os.IsNotExist(err) {
		e.logger.Warn("could not delete uploaded file",
			logging.String("video_path", pending.VideoPath),
			logging.Error(err))
	}

	job.SetMessage("Uploaded " + video.FileName())
	job.UpdateStatus(jobs.StatusFinished)
	e.logger.Info("upload complete",
		logging.Int64("job_id", job.ID()),
		logging.String("remote_path", remotePath))
	return nil
}
