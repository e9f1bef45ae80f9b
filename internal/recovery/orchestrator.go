// Package recovery replays the persisted upload queue at application start,
// reconstructing the metadata each entry needs before handing it to the
// normal upload path.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"platter/internal/logging"
	"platter/internal/media"
	"platter/internal/tmdb"
	"platter/internal/uploads"
)

// Orchestrator drives the boot-time replay. Entries are processed strictly
// sequentially in queue order; one unreconstructable entry never blocks the
// rest, and failed uploads stay queued for the next boot.
type Orchestrator struct {
	queue    *uploads.Queue
	executor *uploads.Executor
	searcher tmdb.Searcher // nil when no metadata key is configured
	logger   *slog.Logger

	stat        func(string) (fs.FileInfo, error)
	placeholder bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStat injects the file-existence probe (for tests).
func WithStat(stat func(string) (fs.FileInfo, error)) Option {
	return func(o *Orchestrator) {
		if stat != nil {
			o.stat = stat
		}
	}
}

// WithPlaceholderFallback reconstructs entries with fabricated metadata
// (zeroed ids, empty overview) when no metadata service is configured,
// instead of leaving them queued.
func WithPlaceholderFallback() Option {
	return func(o *Orchestrator) {
		o.placeholder = true
	}
}

// New wires a recovery orchestrator.
func New(queue *uploads.Queue, executor *uploads.Executor, searcher tmdb.Searcher, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &Orchestrator{
		queue:    queue,
		executor: executor,
		searcher: searcher,
		logger:   logging.NewComponentLogger(logger, "recovery"),
		stat:     os.Stat,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run replays the queue once. It is meant to be launched in a goroutine at
// startup; it returns as soon as the queue is exhausted or ctx is done.
func (o *Orchestrator) Run(ctx context.Context) {
	items := o.queue.Items()
	if len(items) == 0 {
		o.logger.Debug("no pending uploads to recover")
		return
	}
	o.logger.Info("resuming pending uploads", logging.Int("count", len(items)))

	for _, pending := range items {
		if ctx.Err() != nil {
			o.logger.Warn("recovery interrupted", logging.Error(ctx.Err()))
			return
		}
		o.processOne(ctx, pending)
	}
	o.logger.Info("upload recovery pass complete", logging.Int("remaining", o.queue.Len()))
}

func (o *Orchestrator) processOne(ctx context.Context, pending uploads.Pending) {
	if _, err := o.stat(pending.VideoPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			o.logger.Info("queued file no longer exists, dropping entry",
				logging.String("video_path", pending.VideoPath))
			if removeErr := o.queue.Remove(pending.VideoPath); removeErr != nil {
				o.logger.Error("could not drop stale entry", logging.Error(removeErr))
			}
			return
		}
		o.logger.Warn("could not stat queued file, leaving in queue",
			logging.String("video_path", pending.VideoPath),
			logging.Error(err))
		return
	}

	video, err := o.reconstruct(ctx, pending)
	if err != nil {
		o.logger.Warn("could not reconstruct metadata, leaving entry for a future attempt",
			logging.String("video_path", pending.VideoPath),
			logging.String("upload_type", string(pending.Type)),
			logging.Error(err))
		return
	}

	if err := o.executor.Upload(ctx, pending, video); err != nil {
		// The executor already marked the job and kept the entry queued.
		o.logger.Error("recovered upload failed",
			logging.String("video_path", pending.VideoPath),
			logging.Error(err))
	}
}

func (o *Orchestrator) reconstruct(ctx context.Context, pending uploads.Pending) (media.Video, error) {
	switch pending.Type {
	case uploads.TypeMovie:
		return o.reconstructMovie(ctx, pending.VideoPath)
	case uploads.TypeTVShow:
		return o.reconstructEpisode(ctx, pending.VideoPath)
	default:
		return media.Video{}, fmt.Errorf("unknown upload type %q", pending.Type)
	}
}

func (o *Orchestrator) reconstructMovie(ctx context.Context, videoPath string) (media.Video, error) {
	name, err := ParseMovieName(videoPath)
	if err != nil {
		return media.Video{}, err
	}
	if o.searcher == nil {
		if o.placeholder {
			return placeholderMovie(name), nil
		}
		return media.Video{}, tmdb.ErrNotConfigured
	}

	resp, err := o.searcher.SearchMovie(ctx, name.Title, name.Year)
	if err != nil {
		return media.Video{}, err
	}
	if len(resp.Results) == 0 {
		return media.Video{}, fmt.Errorf("no match for %q (%d)", name.Title, name.Year)
	}
	details, err := o.searcher.GetMovieDetails(ctx, resp.Results[0].ID)
	if err != nil {
		return media.Video{}, err
	}

	title := details.Title
	if title == "" {
		title = name.Title
	}
	return media.Video{Movie: &media.MovieInfo{
		TMDBID:   details.ID,
		Title:    title,
		Year:     name.Year,
		Edition:  name.Edition,
		Part:     name.Part,
		Overview: details.Overview,
	}}, nil
}

func (o *Orchestrator) reconstructEpisode(ctx context.Context, videoPath string) (media.Video, error) {
	info, err := ParseEpisodePath(videoPath)
	if err != nil {
		return media.Video{}, err
	}
	if o.searcher == nil {
		if o.placeholder {
			return placeholderEpisode(info), nil
		}
		return media.Video{}, tmdb.ErrNotConfigured
	}

	resp, err := o.searcher.SearchTV(ctx, info.Show, info.Year)
	if err != nil {
		return media.Video{}, err
	}
	if len(resp.Results) == 0 {
		return media.Video{}, fmt.Errorf("no match for show %q (%d)", info.Show, info.Year)
	}
	showID := resp.Results[0].ID

	if _, err := o.searcher.GetTVDetails(ctx, showID); err != nil {
		return media.Video{}, fmt.Errorf("confirm show %q: %w", info.Show, err)
	}

	season, err := o.searcher.GetSeasonDetails(ctx, showID, info.Season)
	if err != nil {
		return media.Video{}, fmt.Errorf("season %d of %q: %w", info.Season, info.Show, err)
	}

	for _, episode := range season.Episodes {
		if episode.EpisodeNumber == info.Episode {
			return media.Video{Episode: &media.EpisodeInfo{
				TMDBID:   episode.ID,
				Show:     info.Show,
				Year:     info.Year,
				Season:   info.Season,
				Episode:  info.Episode,
				Name:     episode.Name,
				Part:     info.Part,
				Overview: episode.Overview,
			}}, nil
		}
	}
	return media.Video{}, fmt.Errorf("episode S%02dE%02d not found in %q", info.Season, info.Episode, info.Show)
}

// placeholderMovie fabricates metadata from the file name alone. Only used
// when no metadata service is configured and the fallback is enabled.
func placeholderMovie(name MovieName) media.Video {
	return media.Video{Movie: &media.MovieInfo{
		Title:   name.Title,
		Year:    name.Year,
		Edition: name.Edition,
		Part:    name.Part,
	}}
}

func placeholderEpisode(info EpisodePath) media.Video {
	return media.Video{Episode: &media.EpisodeInfo{
		Show:    info.Show,
		Year:    info.Year,
		Season:  info.Season,
		Episode: info.Episode,
		Part:    info.Part,
	}}
}
