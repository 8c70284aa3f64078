package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	poller "nba-game-poller"
	"nba-game-poller/artifacts"
	"nba-game-poller/config"
	"nba-game-poller/feed"
	"nba-game-poller/metrics"
	"nba-game-poller/notify"
	"nba-game-poller/publisher"
	"nba-game-poller/store"
	"nba-game-poller/store/redisstore"
	"nba-game-poller/trigger"
)

func main() {
	if err := config.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}
	cfg := config.FromEnv()
	logger := poller.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("Worker stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	opts, err := poller.ClientOptions(cfg, logger)
	if err != nil {
		return err
	}
	c, err := client.Dial(opts)
	if err != nil {
		return err
	}
	defer c.Close()

	backend, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	files, err := artifacts.NewFileStore(cfg.ArtifactDir, cfg.ArtifactPrefix, logger)
	if err != nil {
		return err
	}

	m := metrics.New()
	fc := feed.New(
		feed.WithBaseURL(cfg.FeedBaseURL),
		feed.WithTimeout(cfg.FeedTimeout),
		feed.WithLogger(logger),
		feed.WithMetrics(m),
	)

	deps := poller.Deps{
		Records:    backend.Records,
		Feed:       fc,
		Scoreboard: fc,
		Artifacts:  files,
		Manifest:   artifacts.NewManifest(cfg.ArtifactDir, cfg.ArtifactPrefix),
		Trigger: trigger.New(c.ScheduleClient(), trigger.Options{
			TaskQueue:    cfg.TaskQueue,
			PollInterval: cfg.PollInterval,
			TickBudget:   cfg.TickBudget,
		}),
		Notifier:    notify.New(cfg.SlackWebhookURL),
		Metrics:     m,
		Logger:      tlog.NewStructuredLogger(logger),
		KickoffLead: cfg.KickoffLead,
	}

	if cfg.PublishUpdates {
		rc := backend.Redis
		if rc == nil {
			rc, err = redisstore.Connect(ctx, cfg.RedisURL)
			if err != nil {
				return err
			}
			defer rc.Close()
		}
		deps.Updates = publisher.NewStreamPublisher(rc)
	}

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("Serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "err", err)
			}
		}()
		defer srv.Close()
	}

	ctrl := poller.NewController(deps)

	w := worker.New(c, cfg.TaskQueue, worker.Options{})

	w.RegisterWorkflow(poller.ManagerWorkflow)
	w.RegisterWorkflow(poller.KickoffWorkflow)
	w.RegisterWorkflow(poller.PollWorkflow)
	w.RegisterWorkflow(poller.CollectGamesWorkflow)

	// Registers ManagerRun, Kickoff, PollTick and IngestScoreboard.
	w.RegisterActivityWithOptions(ctrl, activity.RegisterOptions{SkipInvalidStructFunctions: true})

	logger.Info("Starting Temporal worker for the NBA game poller", "taskQueue", cfg.TaskQueue, "backend", cfg.RecordBackend)
	return w.Run(worker.InterruptCh())
}
