package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"platter/internal/config"
	"platter/internal/daemon"
	"platter/internal/history"
	"platter/internal/jobs"
	"platter/internal/logging"
	"platter/internal/makemkv"
	"platter/internal/notifications"
	"platter/internal/recovery"
	"platter/internal/tmdb"
	"platter/internal/uploader"
	"platter/internal/uploads"
)

func runDaemon(parent context.Context, configPath string) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, resolvedPath, exists, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "platter.log")},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if !exists {
		logger.Warn("no config file found, using defaults",
			logging.String("expected_path", resolvedPath))
	}

	runID := uuid.NewString()

	historyStore, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	registry := jobs.NewRegistry(
		jobs.WithRecorder(history.NewRecorder(historyStore, runID, logger)),
		jobs.WithProjection(cfg.Progress.Strategy, cfg.Progress.Smoothing),
	)

	queue, err := uploads.Open(cfg.Paths.QueuePath, logger)
	if err != nil {
		_ = historyStore.Close()
		return fmt.Errorf("open upload queue: %w", err)
	}

	transport, err := uploader.NewHTTP(cfg.Upload.BaseURL, cfg.Upload.RequestTimeout)
	if err != nil {
		_ = historyStore.Close()
		return fmt.Errorf("init uploader: %w", err)
	}
	executor := uploads.NewExecutor(registry, queue, transport, cfg.Upload.MoviesDir, cfg.Upload.TVDir, logger)

	var searcher tmdb.Searcher
	if cfg.TMDB.APIKey != "" {
		client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
		if err != nil {
			_ = historyStore.Close()
			return fmt.Errorf("init tmdb client: %w", err)
		}
		searcher = client
	}

	var recoveryOpts []recovery.Option
	if cfg.Recovery.PlaceholderFallback {
		recoveryOpts = append(recoveryOpts, recovery.WithPlaceholderFallback())
	}
	orchestrator := recovery.New(queue, executor, searcher, logger, recoveryOpts...)

	client, err := makemkv.New(cfg.MakemkvBinary(), cfg.MakeMKV.InfoTimeout, cfg.MakeMKV.RipTimeout)
	if err != nil {
		_ = historyStore.Close()
		return fmt.Errorf("init makemkv client: %w", err)
	}

	notifier := notifications.NewService(cfg.Notifications.NtfyTopic, cfg.Notifications.RequestTimeout)

	d, err := daemon.New(cfg, logger, daemon.Components{
		Registry: registry,
		Queue:    queue,
		History:  historyStore,
		MakeMKV:  client,
		Recovery: orchestrator,
		Notifier: notifier,
	}, daemon.WithRunID(runID))
	if err != nil {
		_ = historyStore.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-ctx.Done()
	logger.Info("platterd shutting down")
	return nil
}
