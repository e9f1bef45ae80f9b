package uploads

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"platter/internal/jobs"
	"platter/internal/media"
)

type fakeTransport struct {
	err   error
	calls []string
}

func (f *fakeTransport) Upload(ctx context.Context, localPath, remotePath string) error {
	f.calls = append(f.calls, remotePath)
	return f.err
}

func writeStagedFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("mkv"), 0o644); err != nil {
		t.Fatalf("write staged file: %v", err)
	}
	return path
}

func TestUploadSuccessDequeuesAndDeletes(t *testing.T) {
	dir := t.TempDir()
	staged := writeStagedFile(t, dir, "Heat (1995).mkv")

	queue, err := Open(filepath.Join(dir, "queue.json"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	pending := Pending{VideoPath: staged, Type: TypeMovie}
	if err := queue.Add(pending); err != nil {
		t.Fatalf("Add: %v", err)
	}

	registry := jobs.NewRegistry()
	transport := &fakeTransport{}
	executor := NewExecutor(registry, queue, transport, "Movies", "TV Shows", nil)

	video := media.Video{Movie: &media.MovieInfo{Title: "Heat", Year: 1995}}
	if err := executor.Upload(context.Background(), pending, video); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if queue.Len() != 0 {
		t.Fatalf("successful upload must dequeue, got %d entries", queue.Len())
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Fatal("successful upload must delete the local file")
	}
	if len(transport.calls) != 1 || transport.calls[0] != "Movies/Heat (1995)/Heat (1995).mkv" {
		t.Fatalf("unexpected remote path: %v", transport.calls)
	}

	job, ok := registry.FindJob(nil, typePtr(jobs.TypeUploading), jobs.StatusFinished)
	if !ok {
		t.Fatal("expected a finished upload job")
	}
	if job.Percent() != 100 {
		t.Fatalf("finished job must report 100%%, got %d", job.Percent())
	}
}

func TestUploadFailureKeepsEntryAndMarksJobError(t *testing.T) {
	dir := t.TempDir()
	staged := writeStagedFile(t, dir, "Heat (1995).mkv")

	queue, err := Open(filepath.Join(dir, "queue.json"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	pending := Pending{VideoPath: staged, Type: TypeMovie}
	queue.Add(pending)

	registry := jobs.NewRegistry()
	transport := &fakeTransport{err: errors.New("connection reset")}
	executor := NewExecutor(registry, queue, transport, "Movies", "TV Shows", nil)

	video := media.Video{Movie: &media.MovieInfo{Title: "Heat", Year: 1995}}
	if err := executor.Upload(context.Background(), pending, video); err == nil {
		t.Fatal("expected upload error")
	}

	if queue.Len() != 1 {
		t.Fatal("failed upload must leave the entry queued for the next boot")
	}
	if _, err := os.Stat(staged); err != nil {
		t.Fatal("failed upload must not delete the local file")
	}
	job, ok := registry.FindJob(nil, typePtr(jobs.TypeUploading), jobs.StatusError)
	if !ok {
		t.Fatal("expected an errored upload job")
	}
	if job.Message() == "" {
		t.Fatal("errored job must carry the failure message")
	}
}

func TestUploadReusesPendingJob(t *testing.T) {
	dir := t.TempDir()
	staged := writeStagedFile(t, dir, "Heat (1995).mkv")

	queue, err := Open(filepath.Join(dir, "queue.json"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	pending := Pending{VideoPath: staged, Type: TypeMovie}
	queue.Add(pending)

	registry := jobs.NewRegistry()
	existing := registry.NewJob(jobs.TypeUploading, nil)

	executor := NewExecutor(registry, queue, &fakeTransport{}, "Movies", "TV Shows", nil)
	video := media.Video{Movie: &media.MovieInfo{Title: "Heat", Year: 1995}}
	if err := executor.Upload(context.Background(), pending, video); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if registry.Len() != 1 {
		t.Fatalf("executor must reuse the pending upload job, got %d jobs", registry.Len())
	}
	if existing.Status() != jobs.StatusFinished {
		t.Fatalf("reused job must finish, got %s", existing.Status())
	}
}

// startingSink moves every new upload job to Processing as soon as it
// appears, standing in for a caller that starts the job between lookup and
// attach.
type startingSink struct {
	registry *jobs.Registry
}

func (s *startingSink) JobUpdated(jobs.Snapshot) {}

func (s *startingSink) JobListChanged() {
	if job, ok := s.registry.FindJob(nil, typePtr(jobs.TypeUploading), jobs.StatusPending); ok {
		job.UpdateStatus(jobs.StatusProcessing)
	}
}

func TestUploadRejectedAttachLeavesJobUntouched(t *testing.T) {
	dir := t.TempDir()
	staged := writeStagedFile(t, dir, "Heat (1995).mkv")

	queue, err := Open(filepath.Join(dir, "queue.json"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	pending := Pending{VideoPath: staged, Type: TypeMovie}
	queue.Add(pending)

	sink := &startingSink{}
	registry := jobs.NewRegistry(jobs.WithSink(sink))
	sink.registry = registry
	transport := &fakeTransport{}
	executor := NewExecutor(registry, queue, transport, "Movies", "TV Shows", nil)

	video := media.Video{Movie: &media.MovieInfo{Title: "Heat", Year: 1995}}
	if err := executor.Upload(context.Background(), pending, video); err == nil {
		t.Fatal("expected attach rejection")
	}

	job, ok := registry.FindJob(nil, typePtr(jobs.TypeUploading))
	if !ok {
		t.Fatal("expected the upload job to exist")
	}
	if job.Title() != "" {
		t.Fatalf("rejected attach must not title the job, got %q", job.Title())
	}
	if got := len(job.Videos()); got != 0 {
		t.Fatalf("rejected attach must leave videos unchanged, got %d", got)
	}
	if len(transport.calls) != 0 {
		t.Fatal("rejected attach must not transfer anything")
	}
	if queue.Len() != 1 {
		t.Fatal("rejected attach must leave the entry queued")
	}
}

func typePtr(t jobs.Type) *jobs.Type {
	return &t
}
