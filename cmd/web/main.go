package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.temporal.io/sdk/client"

	poller "nba-game-poller"
	"nba-game-poller/artifacts"
	"nba-game-poller/config"
	"nba-game-poller/metrics"
	"nba-game-poller/store"
	"nba-game-poller/trigger"
	"nba-game-poller/web"
)

func main() {
	if err := config.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}
	cfg := config.FromEnv()
	logger := poller.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx := context.Background()
	opts := web.Options{
		TaskQueue:  cfg.TaskQueue,
		TickBudget: cfg.TickBudget,
		Metrics:    metrics.New(),
		Logger:     logger,
	}

	// The API still serves records and artifacts without Temporal.
	if clientOpts, err := poller.ClientOptions(cfg, logger); err != nil {
		logger.Warn("Temporal not configured, poller endpoints run in demo mode", "err", err)
	} else if c, err := client.Dial(clientOpts); err != nil {
		logger.Warn("Unable to create Temporal client, poller endpoints run in demo mode", "err", err)
	} else {
		defer c.Close()
		logger.Info("Successfully connected to Temporal server")
		opts.Workflows = c
		opts.Schedules = trigger.New(c.ScheduleClient(), trigger.Options{
			TaskQueue:    cfg.TaskQueue,
			PollInterval: cfg.PollInterval,
			TickBudget:   cfg.TickBudget,
		})
	}

	if backend, err := store.Open(ctx, cfg); err != nil {
		logger.Warn("Record store unavailable", "backend", cfg.RecordBackend, "err", err)
	} else {
		defer backend.Close()
		opts.Records = backend.Records
	}

	files, err := artifacts.NewFileStore(cfg.ArtifactDir, cfg.ArtifactPrefix, logger)
	if err != nil {
		logger.Error("Unable to open artifact store", "err", err)
		os.Exit(1)
	}
	opts.Artifacts = files

	handlers := web.NewHandlers(opts)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(handlers.Routes(), "web"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("Starting web server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Server failed to start", "err", err)
		os.Exit(1)
	}
}
