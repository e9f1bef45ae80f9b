package daemon

import (
	"context"
	"path/filepath"
	"testing"

	"platter/internal/config"
	"platter/internal/history"
	"platter/internal/jobs"
	"platter/internal/recovery"
	"platter/internal/uploads"
)

type nilTransport struct{}

func (nilTransport) Upload(ctx context.Context, localPath, remotePath string) error {
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(dir, "staging")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.QueuePath = filepath.Join(dir, "queue.json")
	cfg.Upload.BaseURL = "https://media.local"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &cfg
}

func testComponents(t *testing.T, cfg *config.Config) Components {
	t.Helper()
	queue, err := uploads.Open(cfg.Paths.QueuePath, nil)
	if err != nil {
		t.Fatalf("open queue: %v", err)
	}
	registry := jobs.NewRegistry()
	executor := uploads.NewExecutor(registry, queue, nilTransport{}, cfg.Upload.MoviesDir, cfg.Upload.TVDir, nil)
	return Components{
		Registry: registry,
		Queue:    queue,
		Recovery: recovery.New(queue, executor, nil, nil),
	}
}

func TestStartEnforcesSingleInstance(t *testing.T) {
	cfg := testConfig(t)
	comps := testComponents(t, cfg)

	first, err := New(cfg, nil, comps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	second, err := New(cfg, nil, comps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance must not acquire the lock")
	}
}

func TestStopReleasesLockForRestart(t *testing.T) {
	cfg := testConfig(t)
	comps := testComponents(t, cfg)

	daemon, err := New(cfg, nil, comps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	daemon.Stop()

	if err := daemon.Start(context.Background()); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	daemon.Stop()
}

func TestStartReplaysUploadQueue(t *testing.T) {
	cfg := testConfig(t)
	comps := testComponents(t, cfg)

	// A queued entry whose file vanished; the replay drops it.
	gone := filepath.Join(cfg.Paths.StagingDir, "gone.mkv")
	if err := comps.Queue.Add(uploads.Pending{VideoPath: gone, Type: uploads.TypeMovie}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	daemon, err := New(cfg, nil, comps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := daemon.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	daemon.Stop() // waits for the replay goroutine

	if comps.Queue.Len() != 0 {
		t.Fatalf("replay must drop stale entries, %d remain", comps.Queue.Len())
	}
}

func TestCloseClosesHistory(t *testing.T) {
	cfg := testConfig(t)
	comps := testComponents(t, cfg)

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	comps.History = store

	daemon, err := New(cfg, nil, comps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := daemon.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("double close must be safe: %v", err)
	}
}

func TestStatusReportsCounts(t *testing.T) {
	cfg := testConfig(t)
	comps := testComponents(t, cfg)
	comps.Registry.NewJob(jobs.TypeRipping, nil)

	daemon, err := New(cfg, nil, comps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	status := daemon.Status()
	if status.Running {
		t.Fatal("daemon must not report running before Start")
	}
	if status.Jobs != 1 {
		t.Fatalf("expected 1 job, got %d", status.Jobs)
	}
	if status.RunID == "" {
		t.Fatal("run id must be assigned at construction")
	}
}

func TestNewRejectsMissingComponents(t *testing.T) {
	cfg := testConfig(t)
	if _, err := New(cfg, nil, Components{}); err == nil {
		t.Fatal("daemon must require registry and queue")
	}
	if _, err := New(nil, nil, testComponents(t, cfg)); err == nil {
		t.Fatal("daemon must require config")
	}
}
