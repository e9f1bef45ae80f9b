package uploads

import "strings"

// Type distinguishes the two destination layouts.
type Type string

const (
	TypeMovie  Type = "Movie"
	TypeTVShow Type = "TvShow"
)

// ParseType normalizes a stored upload type string.
func ParseType(value string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "movie":
		return TypeMovie, true
	case "tvshow", "tv_show", "tv":
		return TypeTVShow, true
	default:
		return "", false
	}
}

// Pending identifies one file awaiting delivery to the remote destination.
// The (VideoPath, Type) pair is the identity used for de-duplication.
type Pending struct {
	VideoPath string `json:"video_path"`
	Type      Type   `json:"upload_type"`
}
