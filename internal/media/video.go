package media

import (
	"fmt"
	"path"
	"strings"
)

// TitleInfo is the metadata the ripping tool reports about one disc title.
type TitleInfo struct {
	ID        int
	Name      string
	Duration  int // seconds
	SizeBytes int64
	Chapters  int
	Playlist  string
}

// MovieInfo identifies a movie edition.
type MovieInfo struct {
	TMDBID   int64
	Title    string
	Year     int
	Edition  string
	Part     int
	Overview string
}

// EpisodeInfo identifies one TV episode.
type EpisodeInfo struct {
	TMDBID   int64
	Show     string
	Year     int
	Season   int
	Episode  int
	Name     string
	Part     int
	Overview string
}

// Video pairs a disc title with the movie or episode it represents. Exactly
// one of Movie and Episode is set.
type Video struct {
	Title   TitleInfo
	Movie   *MovieInfo
	Episode *EpisodeInfo
}

// IsMovie reports whether the video carries movie metadata.
func (v Video) IsMovie() bool {
	return v.Movie != nil
}

// DisplayName returns the human-readable name used in job titles.
func (v Video) DisplayName() string {
	switch {
	case v.Movie != nil:
		return fmt.Sprintf("%s (%d)", v.Movie.Title, v.Movie.Year)
	case v.Episode != nil:
		return fmt.Sprintf("%s - S%02dE%02d", v.Episode.Show, v.Episode.Season, v.Episode.Episode)
	default:
		return v.Title.Name
	}
}

// FileName computes the canonical destination file name.
func (v Video) FileName() string {
	var name string
	switch {
	case v.Movie != nil:
		name = fmt.Sprintf("%s (%d)", v.Movie.Title, v.Movie.Year)
		if edition := strings.TrimSpace(v.Movie.Edition); edition != "" {
			name += fmt.Sprintf(" {edition-%s}", edition)
		}
		if v.Movie.Part > 0 {
			name += fmt.Sprintf("-pt%d", v.Movie.Part)
		}
	case v.Episode != nil:
		name = fmt.Sprintf("%s - S%02dE%02d", v.Episode.Show, v.Episode.Season, v.Episode.Episode)
		if episodeName := strings.TrimSpace(v.Episode.Name); episodeName != "" {
			name += " - " + episodeName
		}
		if v.Episode.Part > 0 {
			name += fmt.Sprintf("-pt%d", v.Episode.Part)
		}
	default:
		name = v.Title.Name
		if name == "" {
			name = fmt.Sprintf("title_%02d", v.Title.ID)
		}
	}
	return SanitizeFileName(name) + ".mkv"
}

// RemotePath computes the destination path relative to the library roots.
func (v Video) RemotePath(moviesDir, tvDir string) string {
	switch {
	case v.Movie != nil:
		folder := SanitizeFileName(fmt.Sprintf("%s (%d)", v.Movie.Title, v.Movie.Year))
		return path.Join(moviesDir, folder, v.FileName())
	case v.Episode != nil:
		show := SanitizeFileName(fmt.Sprintf("%s (%d)", v.Episode.Show, v.Episode.Year))
		season := fmt.Sprintf("Season %02d", v.Episode.Season)
		return path.Join(tvDir, show, season, v.FileName())
	default:
		return path.Join(moviesDir, v.FileName())
	}
}
