package config

const (
	defaultStagingDir        = "~/.local/share/platter/staging"
	defaultLogDir            = "~/.local/share/platter/logs"
	defaultQueuePath         = "~/.local/share/platter/queue.json"
	defaultOpticalDrive      = "/dev/sr0"
	defaultTMDBBaseURL       = "https://api.themoviedb.org/3"
	defaultTMDBLanguage      = "en-US"
	defaultMoviesDir         = "Movies"
	defaultTVDir             = "TV Shows"
	defaultUploadTimeout     = 600
	defaultNotifyTimeout     = 10
	defaultProgressStrategy  = "smoothed"
	defaultProgressSmoothing = 0.1
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			QueuePath:  defaultQueuePath,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		MakeMKV: MakeMKV{
			OpticalDrive: defaultOpticalDrive,
			InfoTimeout:  300,
			RipTimeout:   3600,
		},
		Upload: Upload{
			RequestTimeout: defaultUploadTimeout,
			MoviesDir:      defaultMoviesDir,
			TVDir:          defaultTVDir,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Progress: Progress{
			Strategy:  defaultProgressStrategy,
			Smoothing: defaultProgressSmoothing,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
