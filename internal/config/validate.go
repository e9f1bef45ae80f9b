package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateUpload(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateProgress(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateUpload() error {
	if c.Upload.BaseURL == "" {
		return errors.New("upload.base_url must be set")
	}
	if c.Upload.MoviesDir == "" {
		return errors.New("upload.movies_dir must be set")
	}
	if c.Upload.TVDir == "" {
		return errors.New("upload.tv_dir must be set")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	for key, value := range map[string]int{
		"makemkv.info_timeout":          c.MakeMKV.InfoTimeout,
		"makemkv.rip_timeout":           c.MakeMKV.RipTimeout,
		"upload.request_timeout":        c.Upload.RequestTimeout,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	} {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

func (c *Config) validateProgress() error {
	if c.Progress.Smoothing < 0 || c.Progress.Smoothing >= 1 {
		return errors.New("progress.smoothing must be in [0, 1)")
	}
	return nil
}
