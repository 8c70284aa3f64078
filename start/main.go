package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	poller "nba-game-poller"
	"nba-game-poller/artifacts"
	"nba-game-poller/config"
	"nba-game-poller/store"
	"nba-game-poller/trigger"
)

func main() {
	rebuild := flag.Bool("rebuild-manifest", false, "rebuild the final-games manifest from terminal records")
	dates := flag.String("dates", "", "comma-separated game dates (YYYY-MM-DD) to scan when rebuilding; defaults to today")
	task := flag.String("run", "", "start one task now: manager, kickoff, poll or collect")
	flag.Parse()

	if err := config.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}
	cfg := config.FromEnv()
	logger := poller.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx := context.Background()

	if *rebuild {
		if err := rebuildManifest(ctx, cfg, splitDates(*dates, time.Now()), logger); err != nil {
			logger.Error("Unable to rebuild manifest", "err", err)
			os.Exit(1)
		}
	}

	opts, err := poller.ClientOptions(cfg, logger)
	if err != nil {
		logger.Error("Invalid Temporal configuration", "err", err)
		os.Exit(1)
	}
	c, err := client.Dial(opts)
	if err != nil {
		logger.Error("Unable to create client", "err", err)
		os.Exit(1)
	}
	defer c.Close()

	tr := trigger.New(c.ScheduleClient(), trigger.Options{
		TaskQueue:    cfg.TaskQueue,
		PollInterval: cfg.PollInterval,
		TickBudget:   cfg.TickBudget,
	})
	if err := tr.EnsureSchedules(ctx); err != nil {
		logger.Error("Unable to create schedules", "err", err)
		os.Exit(1)
	}
	logger.Info("Schedules in place", "taskQueue", cfg.TaskQueue)

	if *task == "" {
		return
	}
	workflow, ok := poller.WorkflowForTask(*task)
	if !ok {
		logger.Error("Unknown task", "task", *task)
		os.Exit(2)
	}
	var args []interface{}
	if *task == poller.TaskPoll {
		args = append(args, poller.PollRequest{TickBudget: cfg.TickBudget})
	}
	we, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        fmt.Sprintf("%s-%s", *task, uuid.NewString()),
		TaskQueue: cfg.TaskQueue,
	}, workflow, args...)
	if err != nil {
		logger.Error("Unable to execute workflow", "task", *task, "err", err)
		os.Exit(1)
	}
	logger.Info("Started workflow", "WorkflowID", we.GetID(), "RunID", we.GetRunID())
}

func splitDates(s string, now time.Time) []string {
	if strings.TrimSpace(s) == "" {
		return []string{poller.NBADate(now)}
	}
	var out []string
	for _, d := range strings.Split(s, ",") {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// rebuildManifest merges the terminal games of dates into the existing manifest.
func rebuildManifest(ctx context.Context, cfg config.Config, dates []string, logger *slog.Logger) error {
	backend, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	manifest := artifacts.NewManifest(cfg.ArtifactDir, cfg.ArtifactPrefix)
	ids, err := manifest.IDs()
	if err != nil {
		return err
	}

	now := time.Now()
	for _, date := range dates {
		records, err := backend.Records.QueryByDate(ctx, date)
		if err != nil {
			return fmt.Errorf("load games for %s: %w", date, err)
		}
		for _, rec := range records {
			if poller.Classify(rec.Status, rec.Clock, rec.StartTime, now) == poller.LifecycleTerminal && !slices.Contains(ids, rec.ID) {
				ids = append(ids, rec.ID)
			}
		}
	}
	slices.Sort(ids)

	if err := manifest.Rebuild(ctx, ids); err != nil {
		return err
	}
	logger.Info("Manifest rebuilt", "games", len(ids), "dates", dates)
	return nil
}
