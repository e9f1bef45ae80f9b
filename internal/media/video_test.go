package media

import "testing"

func TestMovieFileName(t *testing.T) {
	video := Video{Movie: &MovieInfo{Title: "Blade Runner", Year: 1982}}
	if got := video.FileName(); got != "Blade Runner (1982).mkv" {
		t.Fatalf("unexpected file name: %q", got)
	}
}

func TestMovieFileNameWithEditionAndPart(t *testing.T) {
	video := Video{Movie: &MovieInfo{Title: "Blade Runner", Year: 1982, Edition: "Final Cut", Part: 2}}
	want := "Blade Runner (1982) {edition-Final Cut}-pt2.mkv"
	if got := video.FileName(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestEpisodeFileName(t *testing.T) {
	video := Video{Episode: &EpisodeInfo{Show: "Severance", Year: 2022, Season: 1, Episode: 4, Name: "The You You Are"}}
	want := "Severance - S01E04 - The You You Are.mkv"
	if got := video.FileName(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRemotePathMovie(t *testing.T) {
	video := Video{Movie: &MovieInfo{Title: "Heat", Year: 1995}}
	want := "Movies/Heat (1995)/Heat (1995).mkv"
	if got := video.RemotePath("Movies", "TV Shows"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRemotePathEpisode(t *testing.T) {
	video := Video{Episode: &EpisodeInfo{Show: "Severance", Year: 2022, Season: 2, Episode: 1, Name: "Hello, Ms. Cobel"}}
	want := "TV Shows/Severance (2022)/Season 02/Severance - S02E01 - Hello, Ms. Cobel.mkv"
	if got := video.RemotePath("Movies", "TV Shows"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFileNameSanitizesUnsafeCharacters(t *testing.T) {
	video := Video{Movie: &MovieInfo{Title: "What? A: Movie", Year: 2001}}
	if got := video.FileName(); got != "What A- Movie (2001).mkv" {
		t.Fatalf("unexpected sanitized name: %q", got)
	}
}

func TestPrettifyLabel(t *testing.T) {
	cases := map[string]string{
		"THE_DARK_CRYSTAL":  "The Dark Crystal",
		"blade.runner.1982": "Blade Runner 1982",
		"   ":               "Unknown Disc",
		"":                  "Unknown Disc",
	}
	for in, want := range cases {
		if got := PrettifyLabel(in); got != want {
			t.Fatalf("PrettifyLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
