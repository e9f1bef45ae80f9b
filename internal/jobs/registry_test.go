package jobs

import (
	"sync"
	"testing"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func typePtr(t Type) *Type {
	return &t
}

func TestJobIDsAreStrictlyIncreasing(t *testing.T) {
	registry := NewRegistry()
	var last int64
	for i := 0; i < 5; i++ {
		job := registry.NewJob(TypeLoading, nil)
		if job.ID() <= last {
			t.Fatalf("ids must be strictly increasing: %d after %d", job.ID(), last)
		}
		last = job.ID()
	}
}

func TestListIsNewestFirst(t *testing.T) {
	registry := NewRegistry()
	first := registry.NewJob(TypeLoading, nil)
	second := registry.NewJob(TypeRipping, nil)

	listed := registry.List()
	if len(listed) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(listed))
	}
	if listed[0].ID() != second.ID() || listed[1].ID() != first.ID() {
		t.Fatal("list must be newest-first")
	}
}

func TestFindJobDiscFiltering(t *testing.T) {
	registry := NewRegistry()
	discless := registry.NewJob(TypeRipping, nil)
	withDisc := registry.NewJob(TypeRipping, &DiscSnapshot{ID: 7, Label: "HEAT"})

	found, ok := registry.FindJob(nil, typePtr(TypeRipping), StatusPending)
	if !ok || found.ID() != discless.ID() {
		t.Fatal("nil disc id must match only disc-less jobs")
	}

	found, ok = registry.FindJob(int64Ptr(7), typePtr(TypeRipping), StatusPending)
	if !ok || found.ID() != withDisc.ID() {
		t.Fatal("disc id 7 must match the job associated with disc 7")
	}

	if _, ok := registry.FindJob(int64Ptr(9), nil, StatusPending); ok {
		t.Fatal("unknown disc id must not match")
	}
}

func TestFindJobStatusFiltering(t *testing.T) {
	registry := NewRegistry()
	job := registry.NewJob(TypeUploading, nil)
	job.UpdateStatus(StatusProcessing)

	if _, ok := registry.FindJob(nil, typePtr(TypeUploading), StatusPending, StatusReady); ok {
		t.Fatal("processing job must not match a pending/ready filter")
	}
	if _, ok := registry.FindJob(nil, typePtr(TypeUploading), StatusProcessing); !ok {
		t.Fatal("processing job must match a processing filter")
	}
}

func TestFindOrCreateJobIsIdempotent(t *testing.T) {
	sink := &recordingSink{}
	registry := NewRegistry(WithSink(sink))

	job, created := registry.FindOrCreateJob(nil, nil, TypeUploading, StatusPending, StatusReady)
	if !created {
		t.Fatal("first call must create")
	}
	again, createdAgain := registry.FindOrCreateJob(nil, nil, TypeUploading, StatusPending, StatusReady)
	if createdAgain {
		t.Fatal("second call must reuse the existing job")
	}
	if job.ID() != again.ID() {
		t.Fatalf("expected the same job, got %d and %d", job.ID(), again.ID())
	}
	if registry.Len() != 1 {
		t.Fatalf("expected a single job, got %d", registry.Len())
	}
}

func TestDeleteJob(t *testing.T) {
	registry := NewRegistry()
	job := registry.NewJob(TypeLoading, nil)
	if !registry.Delete(job.ID()) {
		t.Fatal("expected delete to succeed")
	}
	if registry.Delete(job.ID()) {
		t.Fatal("double delete must report false")
	}
	if registry.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", registry.Len())
	}
}

func TestConcurrentFindOrCreateDoesNotDuplicate(t *testing.T) {
	registry := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			registry.FindOrCreateJob(nil, nil, TypeUploading, StatusPending, StatusReady)
		}()
	}
	wg.Wait()
	if registry.Len() != 1 {
		t.Fatalf("concurrent find-or-create must not duplicate, got %d jobs", registry.Len())
	}
}

func TestInjectedAllocator(t *testing.T) {
	allocator := &stubAllocator{next: 41}
	registry := NewRegistry(WithIDAllocator(allocator))
	job := registry.NewJob(TypeLoading, nil)
	if job.ID() != 42 {
		t.Fatalf("expected id from injected allocator, got %d", job.ID())
	}
}

type stubAllocator struct {
	mu   sync.Mutex
	next int64
}

func (s *stubAllocator) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}
