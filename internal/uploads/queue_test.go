package uploads

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func tempQueuePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "pending_uploads.json")
}

func TestAddPersistsBeforeReturning(t *testing.T) {
	path := tempQueuePath(t)
	queue, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := queue.Add(Pending{VideoPath: "/stage/Heat (1995).mkv", Type: TypeMovie}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("queue file must exist after Add: %v", err)
	}
	var doc struct {
		Pending []Pending `json:"pending"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode queue file: %v", err)
	}
	if len(doc.Pending) != 1 || doc.Pending[0].VideoPath != "/stage/Heat (1995).mkv" {
		t.Fatalf("unexpected persisted document: %+v", doc)
	}
}

func TestAddDuplicateIsNoop(t *testing.T) {
	queue, err := Open(tempQueuePath(t), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	entry := Pending{VideoPath: "/stage/Heat (1995).mkv", Type: TypeMovie}
	if err := queue.Add(entry); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := queue.Add(entry); err != nil {
		t.Fatalf("duplicate Add: %v", err)
	}
	if queue.Len() != 1 {
		t.Fatalf("duplicate add must keep queue size 1, got %d", queue.Len())
	}
}

func TestAddSamePathDifferentTypeIsKept(t *testing.T) {
	queue, err := Open(tempQueuePath(t), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	queue.Add(Pending{VideoPath: "/stage/a.mkv", Type: TypeMovie})
	queue.Add(Pending{VideoPath: "/stage/a.mkv", Type: TypeTVShow})
	if queue.Len() != 2 {
		t.Fatalf("identity is the (path, type) pair, got %d entries", queue.Len())
	}
}

func TestRemoveDeletesByPathRegardlessOfType(t *testing.T) {
	queue, err := Open(tempQueuePath(t), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	queue.Add(Pending{VideoPath: "/stage/a.mkv", Type: TypeMovie})
	queue.Add(Pending{VideoPath: "/stage/a.mkv", Type: TypeTVShow})
	queue.Add(Pending{VideoPath: "/stage/b.mkv", Type: TypeMovie})

	if err := queue.Remove("/stage/a.mkv"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	items := queue.Items()
	if len(items) != 1 || items[0].VideoPath != "/stage/b.mkv" {
		t.Fatalf("unexpected remaining items: %+v", items)
	}
}

func TestOpenReloadsPersistedQueue(t *testing.T) {
	path := tempQueuePath(t)
	queue, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	queue.Add(Pending{VideoPath: "/stage/a.mkv", Type: TypeMovie})
	queue.Add(Pending{VideoPath: "/stage/b.mkv", Type: TypeTVShow})

	reloaded, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	items := reloaded.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 reloaded entries, got %d", len(items))
	}
	if items[0].VideoPath != "/stage/a.mkv" || items[1].VideoPath != "/stage/b.mkv" {
		t.Fatalf("queue order must survive reload: %+v", items)
	}
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	queue, err := Open(tempQueuePath(t), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if queue.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", queue.Len())
	}
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := tempQueuePath(t)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(path, nil); err == nil {
		t.Fatal("expected error for corrupt queue file")
	}
}

func TestParseType(t *testing.T) {
	if got, ok := ParseType("movie"); !ok || got != TypeMovie {
		t.Fatalf("unexpected: %v %v", got, ok)
	}
	if got, ok := ParseType("TvShow"); !ok || got != TypeTVShow {
		t.Fatalf("unexpected: %v %v", got, ok)
	}
	if _, ok := ParseType("album"); ok {
		t.Fatal("unknown type must not parse")
	}
}
