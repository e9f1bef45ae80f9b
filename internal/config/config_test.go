package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.toml")

	// Defaults alone fail validation because upload.base_url is empty.
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("defaults without upload.base_url must not validate")
	}

	if err := os.WriteFile(path, []byte("[upload]\nbase_url = \"https://media.local/ingest\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.MakeMKV.OpticalDrive != "/dev/sr0" {
		t.Fatalf("default optical drive missing: %q", cfg.MakeMKV.OpticalDrive)
	}
	if cfg.Upload.MoviesDir != "Movies" || cfg.Upload.TVDir != "TV Shows" {
		t.Fatalf("default library dirs missing: %+v", cfg.Upload)
	}
	if cfg.Progress.Strategy != "smoothed" || cfg.Progress.Smoothing != 0.1 {
		t.Fatalf("default progress settings missing: %+v", cfg.Progress)
	}
}

func TestLoadExpandsAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
staging_dir = "` + dir + `/staging"

[upload]
base_url = "https://media.local/ingest/"

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Upload.BaseURL != "https://media.local/ingest" {
		t.Fatalf("base url must lose its trailing slash: %q", cfg.Upload.BaseURL)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging values must be lowercased: %+v", cfg.Logging)
	}
	if !filepath.IsAbs(cfg.Paths.QueuePath) {
		t.Fatalf("queue path must be absolute: %q", cfg.Paths.QueuePath)
	}
}

func TestTMDBKeyFallsBackToEnv(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "from-env")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[upload]\nbase_url = \"https://media.local\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TMDB.APIKey != "from-env" {
		t.Fatalf("expected env fallback, got %q", cfg.TMDB.APIKey)
	}
}

func TestValidateRejectsBadSmoothing(t *testing.T) {
	cfg := Default()
	cfg.Upload.BaseURL = "https://media.local"
	cfg.Progress.Smoothing = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("smoothing above 1 must be rejected")
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[makemkv]") {
		t.Fatal("sample must contain a makemkv section")
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.StagingDir = filepath.Join(dir, "staging")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.QueuePath = filepath.Join(dir, "state", "queue.json")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, path := range []string{cfg.Paths.StagingDir, cfg.Paths.LogDir, filepath.Join(dir, "state")} {
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q", path)
		}
	}
}
