package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizeMakeMKV()
	c.normalizeUpload()
	c.normalizeNotifications()
	c.normalizeProgress()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.QueuePath) == "" {
		c.Paths.QueuePath = defaultQueuePath
	}
	if c.Paths.QueuePath, err = expandPath(c.Paths.QueuePath); err != nil {
		return fmt.Errorf("paths.queue_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
}

func (c *Config) normalizeMakeMKV() {
	c.MakeMKV.OpticalDrive = strings.TrimSpace(c.MakeMKV.OpticalDrive)
	if c.MakeMKV.OpticalDrive == "" {
		c.MakeMKV.OpticalDrive = defaultOpticalDrive
	}
	if c.MakeMKV.InfoTimeout <= 0 {
		c.MakeMKV.InfoTimeout = 300
	}
	if c.MakeMKV.RipTimeout <= 0 {
		c.MakeMKV.RipTimeout = 3600
	}
}

func (c *Config) normalizeUpload() {
	c.Upload.BaseURL = strings.TrimRight(strings.TrimSpace(c.Upload.BaseURL), "/")
	if c.Upload.RequestTimeout <= 0 {
		c.Upload.RequestTimeout = defaultUploadTimeout
	}
	c.Upload.MoviesDir = strings.TrimSpace(c.Upload.MoviesDir)
	if c.Upload.MoviesDir == "" {
		c.Upload.MoviesDir = defaultMoviesDir
	}
	c.Upload.TVDir = strings.TrimSpace(c.Upload.TVDir)
	if c.Upload.TVDir == "" {
		c.Upload.TVDir = defaultTVDir
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeProgress() {
	c.Progress.Strategy = strings.ToLower(strings.TrimSpace(c.Progress.Strategy))
	if c.Progress.Strategy == "" {
		c.Progress.Strategy = defaultProgressStrategy
	}
	if c.Progress.Smoothing == 0 {
		c.Progress.Smoothing = defaultProgressSmoothing
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		c.Logging.Format = ""
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
