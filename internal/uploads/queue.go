package uploads

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"platter/internal/logging"
)

// document is the durable on-disk shape of the queue. The file is read once
// at startup and rewritten in full on every mutation.
type document struct {
	Pending []Pending `json:"pending"`
}

// Queue is the duplicate-free set of pending uploads. Every mutation is
// persisted before it is considered committed: when Add or Remove returns
// nil, the change is durably recorded.
type Queue struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	entries []Pending
}

// Open loads the persisted queue, starting empty when no file exists yet.
func Open(path string, logger *slog.Logger) (*Queue, error) {
	if path == "" {
		return nil, errors.New("queue path required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	q := &Queue{
		path:   path,
		logger: logging.NewComponentLogger(logger, "uploadqueue"),
	}
	if err := q.load(); err != nil {
		return nil, err
	}
	return q, nil
}

// Add queues a file for upload. Adding an exact (path, type) duplicate is a
// logged no-op.
func (q *Queue) Add(pending Pending) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, entry := range q.entries {
		if entry == pending {
			q.logger.Info("upload already queued",
				logging.String("video_path", pending.VideoPath),
				logging.String("upload_type", string(pending.Type)))
			return nil
		}
	}

	q.entries = append(q.entries, pending)
	if err := q.save(); err != nil {
		q.entries = q.entries[:len(q.entries)-1]
		return fmt.Errorf("persist queue: %w", err)
	}
	q.logger.Info("upload queued",
		logging.String("video_path", pending.VideoPath),
		logging.String("upload_type", string(pending.Type)))
	return nil
}

// Remove deletes every entry with the given path, regardless of type.
func (q *Queue) Remove(videoPath string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.entries[:0:0]
	removed := 0
	for _, entry := range q.entries {
		if entry.VideoPath == videoPath {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	if removed == 0 {
		return nil
	}

	previous := q.entries
	q.entries = kept
	if err := q.save(); err != nil {
		q.entries = previous
		return fmt.Errorf("persist queue: %w", err)
	}
	q.logger.Info("upload dequeued",
		logging.String("video_path", videoPath),
		logging.Int("removed", removed))
	return nil
}

// Items returns the pending uploads in queue order.
func (q *Queue) Items() []Pending {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := make([]Pending, len(q.entries))
	copy(items, q.entries)
	return items
}

// Len returns the number of queued uploads.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func (q *Queue) load() error {
	data, err := os.ReadFile(q.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read queue file: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode queue file %s: %w", q.path, err)
	}
	q.entries = doc.Pending
	return nil
}

// save rewrites the whole document through a temp file so a crash mid-write
// never corrupts the queue.
func (q *Queue) save() error {
	if err := os.MkdirAll(filepath.Dir(q.path), 0o755); err != nil {
		return fmt.Errorf("ensure queue dir: %w", err)
	}
	doc := document{Pending: q.entries}
	if doc.Pending == nil {
		doc.Pending = []Pending{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode queue: %w", err)
	}
	tmp := q.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write queue temp file: %w", err)
	}
	if err := os.Rename(tmp, q.path); err != nil {
		return fmt.Errorf("replace queue file: %w", err)
	}
	return nil
}
