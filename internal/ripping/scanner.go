// Package ripping drives the two optical phases: scanning a loaded disc for
// its titles and ripping a chosen title to local storage. Both feed live
// progress into the owning job.
package ripping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"platter/internal/jobs"
	"platter/internal/logging"
	"platter/internal/makemkv"
	"platter/internal/media"
)

// TINFO attribute ids the scanner cares about.
const (
	attrTitleName = 2
	attrChapters  = 8
	attrDuration  = 9
	attrSizeBytes = 11
	attrPlaylist  = 16
)

// ScanResult is what a completed disc scan yields.
type ScanResult struct {
	Label  string
	Device string
	Titles []media.TitleInfo
}

// Scanner reads a loaded disc's table of contents.
type Scanner struct {
	client *makemkv.Client
	logger *slog.Logger
}

// NewScanner wires a disc scanner.
func NewScanner(client *makemkv.Client, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		client: client,
		logger: logging.NewComponentLogger(logger, "scanner"),
	}
}

// Scan inventories the disc in device, streaming progress into job. The job
// is moved to processing here; terminal transitions are the caller's call,
// since a scan is usually the first half of a longer workflow.
func (s *Scanner) Scan(ctx context.Context, device string, job *jobs.Job) (ScanResult, error) {
	job.UpdateStatus(jobs.StatusProcessing)
	job.SetMessage("Scanning disc")

	titles := make(map[int]*media.TitleInfo)
	result := ScanResult{Device: device}
	var failure string

	err := s.client.Info(ctx, device, func(record makemkv.Record) {
		switch rec := record.(type) {
		case makemkv.TitleCount:
			s.logger.Debug("title count announced", logging.Int("count", rec.Count))
		case makemkv.TInfo:
			title := titles[rec.ID]
			if title == nil {
				title = &media.TitleInfo{ID: rec.ID}
				titles[rec.ID] = title
			}
			applyTitleAttr(title, rec)
		case makemkv.Drive:
			if rec.DiscName != "" && (result.Label == "" || rec.Device == device) {
				result.Label = media.PrettifyLabel(rec.DiscName)
			}
		case makemkv.ProgressValues:
			job.SetProgressTotal(float64(rec.Max))
			job.SetProgress(float64(rec.Total))
		case makemkv.ProgressTitle:
			job.SetMessage(rec.Name)
		case makemkv.ProgressCurrent:
			job.SetSubtitle(rec.Name)
		case makemkv.Message:
			s.logMessage(rec)
			if makemkv.IsFailure(rec.Code) {
				failure = rec.Message
			}
		case makemkv.Malformed:
			s.logger.Debug("unparseable scanner output",
				logging.String("tag", rec.Tag),
				logging.Any("fields", rec.Fields))
		}
	})
	if err != nil {
		return ScanResult{}, fmt.Errorf("scan %s: %w", device, err)
	}
	if failure != "" {
		return ScanResult{}, fmt.Errorf("scan %s: %s", device, failure)
	}

	for _, title := range titles {
		result.Titles = append(result.Titles, *title)
	}
	sort.Slice(result.Titles, func(i, j int) bool { return result.Titles[i].ID < result.Titles[j].ID })

	if len(result.Titles) == 0 {
		return ScanResult{}, errors.New("disc has no titles")
	}
	if result.Label == "" {
		result.Label = media.PrettifyLabel("")
	}
	return result, nil
}

func (s *Scanner) logMessage(msg makemkv.Message) {
	s.logger.Log(context.Background(), makemkv.MessageLevel(msg.Code), msg.Message,
		logging.Int("code", msg.Code))
}

func applyTitleAttr(title *media.TitleInfo, rec makemkv.TInfo) {
	switch rec.Type {
	case attrTitleName:
		title.Name = rec.Value
	case attrChapters:
		title.Chapters = toInt(rec.Value)
	case attrDuration:
		title.Duration = parseDurationSeconds(rec.Value)
	case attrSizeBytes:
		title.SizeBytes = toInt64(rec.Value)
	case attrPlaylist:
		title.Playlist = rec.Value
	}
}

// parseDurationSeconds decodes "H:MM:SS" (or "MM:SS") into seconds.
func parseDurationSeconds(value string) int {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	seconds := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		seconds = seconds*60 + n
	}
	return seconds
}

func toInt(value string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(value))
	return n
}

func toInt64(value string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	return n
}
