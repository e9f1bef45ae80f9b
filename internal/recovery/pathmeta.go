package recovery

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Filename/layout parsing for queue recovery. These are pure string
// functions: no filesystem or network access, so they are testable in
// isolation and reusable against paths that no longer exist.

var (
	titleYearPattern = regexp.MustCompile(`^(.+?) \((\d{4})\)`)
	editionPattern   = regexp.MustCompile(`\s*\{edition-([^}]+)\}`)
	partPattern      = regexp.MustCompile(`-pt(\d+)$`)
	episodePattern   = regexp.MustCompile(`[Ss](\d{1,2})[Ee](\d{1,3})`)
	seasonDirPattern = regexp.MustCompile(`^Season (\d{1,2})$`)
)

// MovieName is the metadata recoverable from a movie file name alone.
type MovieName struct {
	Title   string
	Year    int
	Edition string
	Part    int
}

// ParseMovieName extracts "Title (Year)", an optional "{edition-XXX}" tag,
// and an optional "-ptN" suffix from a movie file name.
func ParseMovieName(fileName string) (MovieName, error) {
	stem := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))

	var info MovieName
	if match := partPattern.FindStringSubmatch(stem); match != nil {
		info.Part, _ = strconv.Atoi(match[1])
		stem = strings.TrimSuffix(stem, match[0])
	}
	if match := editionPattern.FindStringSubmatch(stem); match != nil {
		info.Edition = match[1]
		stem = editionPattern.ReplaceAllString(stem, "")
	}

	match := titleYearPattern.FindStringSubmatch(stem)
	if match == nil {
		return MovieName{}, fmt.Errorf("file name %q does not look like \"Title (Year)\"", fileName)
	}
	info.Title = strings.TrimSpace(match[1])
	info.Year, _ = strconv.Atoi(match[2])
	return info, nil
}

// EpisodePath is the metadata recoverable from a TV episode's location:
// .../Show (Year)/Season NN/Show - SxxEyy - Episode.ext
type EpisodePath struct {
	Show    string
	Year    int
	Season  int
	Episode int
	Part    int
}

// ParseEpisodePath extracts season/episode from the file name and the show
// name and year from the grandparent directory.
func ParseEpisodePath(videoPath string) (EpisodePath, error) {
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))

	var info EpisodePath
	if match := partPattern.FindStringSubmatch(stem); match != nil {
		info.Part, _ = strconv.Atoi(match[1])
		stem = strings.TrimSuffix(stem, match[0])
	}

	match := episodePattern.FindStringSubmatch(stem)
	if match == nil {
		return EpisodePath{}, fmt.Errorf("file name %q has no SxxEyy marker", filepath.Base(videoPath))
	}
	info.Season, _ = strconv.Atoi(match[1])
	info.Episode, _ = strconv.Atoi(match[2])

	seasonDir := filepath.Base(filepath.Dir(videoPath))
	if !seasonDirPattern.MatchString(seasonDir) {
		return EpisodePath{}, fmt.Errorf("parent directory %q is not a \"Season NN\" directory", seasonDir)
	}

	showDir := filepath.Base(filepath.Dir(filepath.Dir(videoPath)))
	showMatch := titleYearPattern.FindStringSubmatch(showDir)
	if showMatch == nil {
		return EpisodePath{}, fmt.Errorf("grandparent directory %q does not look like \"Show (Year)\"", showDir)
	}
	info.Show = strings.TrimSpace(showMatch[1])
	info.Year, _ = strconv.Atoi(showMatch[2])
	return info, nil
}
