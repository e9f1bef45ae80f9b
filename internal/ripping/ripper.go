package ripping

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"platter/internal/jobs"
	"platter/internal/logging"
	"platter/internal/makemkv"
	"platter/internal/media"
)

// Ripper copies one title off a disc into a staging directory.
type Ripper struct {
	client *makemkv.Client
	logger *slog.Logger
}

// NewRipper wires a title ripper.
func NewRipper(client *makemkv.Client, logger *slog.Logger) *Ripper {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Ripper{
		client: client,
		logger: logging.NewComponentLogger(logger, "ripper"),
	}
}

// Rip extracts title from device into destDir and returns the path of the
// file the tool produced. Progress streams into job; the job is left
// non-terminal on success so the caller can chain the upload phase.
func (r *Ripper) Rip(ctx context.Context, device string, title media.TitleInfo, destDir string, job *jobs.Job) (string, error) {
	job.UpdateStatus(jobs.StatusProcessing)
	job.SetMessage(fmt.Sprintf("Ripping title %d", title.ID))

	before, err := listMKVs(destDir)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("inspect destination: %w", err)
	}

	var failure string
	err = r.client.RipTitle(ctx, device, title.ID, destDir, func(record makemkv.Record) {
		switch rec := record.(type) {
		case makemkv.ProgressValues:
			job.SetProgressTotal(float64(rec.Max))
			job.SetProgress(float64(rec.Total))
		case makemkv.ProgressTitle:
			job.SetMessage(rec.Name)
		case makemkv.ProgressCurrent:
			job.SetSubtitle(rec.Name)
		case makemkv.Message:
			r.logMessage(rec)
			if makemkv.IsFailure(rec.Code) {
				failure = rec.Message
			}
		case makemkv.Malformed:
			r.logger.Debug("unparseable ripper output",
				logging.String("tag", rec.Tag),
				logging.Any("fields", rec.Fields))
		}
	})
	if err != nil {
		return "", fmt.Errorf("rip title %d: %w", title.ID, err)
	}
	if failure != "" {
		return "", fmt.Errorf("rip title %d: %s", title.ID, failure)
	}

	produced, err := newMKV(destDir, before)
	if err != nil {
		return "", fmt.Errorf("rip title %d: %w", title.ID, err)
	}
	r.logger.Info("title ripped",
		logging.Int("title_id", title.ID),
		logging.String("output", produced))
	return produced, nil
}

func (r *Ripper) logMessage(msg makemkv.Message) {
	r.logger.Log(context.Background(), makemkv.MessageLevel(msg.Code), msg.Message,
		logging.Int("code", msg.Code))
}

func listMKVs(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return map[string]struct{}{}, err
	}
	names := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".mkv") {
			names[entry.Name()] = struct{}{}
		}
	}
	return names, nil
}

// newMKV finds the file the rip produced: the .mkv in dir that was not there
// before the rip started.
func newMKV(dir string, before map[string]struct{}) (string, error) {
	after, err := listMKVs(dir)
	if err != nil {
		return "", fmt.Errorf("inspect destination: %w", err)
	}
	var created []string
	for name := range after {
		if _, existed := before[name]; !existed {
			created = append(created, name)
		}
	}
	switch len(created) {
	case 0:
		return "", fmt.Errorf("no output file appeared in %s", dir)
	case 1:
		return filepath.Join(dir, created[0]), nil
	default:
		return "", fmt.Errorf("expected one output file in %s, found %d", dir, len(created))
	}
}
