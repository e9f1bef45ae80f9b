// Package daemon ties the long-running pieces together: single-instance
// locking, the boot-time upload replay, and orderly shutdown of spawned
// ripper processes.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"platter/internal/config"
	"platter/internal/history"
	"platter/internal/jobs"
	"platter/internal/logging"
	"platter/internal/makemkv"
	"platter/internal/notifications"
	"platter/internal/recovery"
	"platter/internal/uploads"
)

// Components are the services the daemon coordinates. Registry and Queue are
// required; the rest degrade gracefully when absent.
type Components struct {
	Registry *jobs.Registry
	Queue    *uploads.Queue
	History  *history.Store
	MakeMKV  *makemkv.Client
	Recovery *recovery.Orchestrator
	Notifier notifications.Service
}

// Daemon coordinates background services and enforces single-instance
// execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	runID  string
	comps  Components

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	RunID         string
	Jobs          int
	QueuedUploads int
	LockFilePath  string
	HistoryDBPath string
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithRunID fixes the run id instead of generating one, so the logger and
// history recorder built by the caller can share it.
func WithRunID(runID string) Option {
	return func(d *Daemon) {
		if runID != "" {
			d.runID = runID
		}
	}
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, comps Components, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if comps.Registry == nil || comps.Queue == nil {
		return nil, errors.New("daemon requires a job registry and an upload queue")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "platterd.lock")
	d := &Daemon{
		cfg:      cfg,
		runID:    uuid.NewString(),
		comps:    comps,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.NewComponentLogger(logger, "daemon").With(logging.String(logging.FieldRunID, d.runID))
	return d, nil
}

// RunID identifies this daemon process in logs and the history ledger.
func (d *Daemon) RunID() string {
	return d.runID
}

// Start acquires the daemon lock and launches the upload replay in the
// background. It returns once the daemon is committed to running; the replay
// itself proceeds concurrently with normal disc handling.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another platter daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.running.Store(true)

	if d.comps.Recovery != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.comps.Recovery.Run(d.ctx)
		}()
	}

	d.logger.Info("platter daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts background work, terminates spawned ripper processes, and
// releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	d.terminateRippers()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("platter daemon stopped")
}

// Close stops the daemon and releases held resources.
func (d *Daemon) Close() error {
	d.Stop()
	if d.comps.History != nil {
		return d.comps.History.Close()
	}
	return nil
}

// terminateRippers sends SIGTERM to any makemkvcon processes still running.
// makemkvcon handles the signal by finalizing its output file.
func (d *Daemon) terminateRippers() {
	if d.comps.MakeMKV == nil {
		return
	}
	for _, pid := range d.comps.MakeMKV.ActivePIDs() {
		if pid <= 0 {
			continue
		}
		if err := unix.Kill(pid, unix.SIGTERM); err != nil {
			d.logger.Warn("could not signal ripper process",
				logging.Int("pid", pid),
				logging.Error(err))
			continue
		}
		d.logger.Info("signalled ripper process", logging.Int("pid", pid))
	}
}

// TestNotification triggers a test notification with the current settings.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg.Notifications.NtfyTopic == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := d.comps.Notifier
	if notifier == nil {
		notifier = notifications.NewService(d.cfg.Notifications.NtfyTopic, d.cfg.Notifications.RequestTimeout)
	}
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:       d.running.Load(),
		RunID:         d.runID,
		Jobs:          d.comps.Registry.Len(),
		QueuedUploads: d.comps.Queue.Len(),
		LockFilePath:  d.lockPath,
		HistoryDBPath: d.cfg.HistoryPath(),
	}
}
