package poller

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"go.temporal.io/sdk/activity"
	tlog "go.temporal.io/sdk/log"

	"nba-game-poller/feed"
	"nba-game-poller/metrics"
)

// DefaultKickoffLead is how long before the earliest tip-off polling starts.
const DefaultKickoffLead = 15 * time.Minute

// Deps are the controller's collaborators. Records, Feed, Artifacts, Manifest
// and Trigger are required; the rest have defaults.
type Deps struct {
	Records    RecordStore
	Feed       Fetcher
	Scoreboard ScoreboardFetcher
	Artifacts  ArtifactStore
	Manifest   Manifest
	Trigger    Trigger
	Updates    UpdatePublisher
	Notifier   FinalNotifier
	Metrics    *metrics.Metrics

	// Logger is used outside activity contexts.
	Logger tlog.Logger
	Now    func() time.Time
	// Rand, when set, drives shuffling, identity choice and jitter. It is
	// not safe for concurrent ticks; leave nil in production.
	Rand        *rand.Rand
	Sleep       func(ctx context.Context, d time.Duration) error
	KickoffLead time.Duration
}

// Controller decides when to poll and runs the poll ticks. Its exported
// methods are registered as Temporal activities.
type Controller struct {
	deps Deps

	mu    sync.Mutex
	state State
}

func NewController(deps Deps) *Controller {
	if deps.Logger == nil {
		deps.Logger = tlog.NewStructuredLogger(slog.Default())
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Sleep == nil {
		deps.Sleep = sleepContext
	}
	if deps.KickoffLead <= 0 {
		deps.KickoffLead = DefaultKickoffLead
	}
	return &Controller{deps: deps, state: StateDisabled}
}

// State returns the controller's last known state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.deps.Metrics.SetControllerState(s.Ordinal())
}

func (c *Controller) logger(ctx context.Context) tlog.Logger {
	if activity.IsActivity(ctx) {
		return activity.GetLogger(ctx)
	}
	return c.deps.Logger
}

func (c *Controller) rng() *rand.Rand {
	if c.deps.Rand != nil {
		return c.deps.Rand
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// ManagerRun is the daily entry point. It either enables polling right away
// or schedules a one-time kickoff ahead of the earliest game.
func (c *Controller) ManagerRun(ctx context.Context) (ManagerResult, error) {
	logger := c.logger(ctx)
	now := c.deps.Now()
	res := ManagerResult{Date: NBADate(now)}

	records, err := c.deps.Records.QueryByDate(ctx, res.Date)
	if err != nil {
		logger.Error("Failed to load games, treating as no games", "date", res.Date, "err", err)
		c.deps.Metrics.IncStoreError("query")
		records = nil
	}
	res.Games = len(records)
	if len(records) == 0 {
		logger.Info("No games today", "date", res.Date)
		c.setState(StateDisabled)
		res.State = StateDisabled
		return res, nil
	}

	earliest, ok := EarliestStartTime(records)
	if !ok {
		logger.Info("No parseable start time, enabling polling now", "date", res.Date, "games", len(records))
		return c.enableFromManager(ctx, res)
	}

	kickoff := earliest.Add(-c.deps.KickoffLead)
	if !kickoff.After(now) {
		logger.Info("Kickoff already due, enabling polling now", "date", res.Date, "kickoff", kickoff)
		return c.enableFromManager(ctx, res)
	}

	if err := c.deps.Trigger.ScheduleOnce(ctx, kickoff, TaskKickoff); err != nil {
		logger.Error("Failed to schedule kickoff, enabling polling now", "date", res.Date, "kickoff", kickoff, "err", err)
		res.TriggerError = err.Error()
		return c.enableFromManager(ctx, res)
	}

	logger.Info("Kickoff scheduled", "date", res.Date, "kickoff", kickoff, "games", len(records))
	c.setState(StateKickoffScheduled)
	res.State = StateKickoffScheduled
	res.KickoffAt = kickoff
	return res, nil
}

func (c *Controller) enableFromManager(ctx context.Context, res ManagerResult) (ManagerResult, error) {
	state, err := c.Kickoff(ctx)
	res.State = state
	return res, err
}

// Kickoff activates the recurring poll.
func (c *Controller) Kickoff(ctx context.Context) (State, error) {
	if err := c.deps.Trigger.EnableRecurring(ctx); err != nil {
		c.logger(ctx).Error("Failed to enable polling", "err", err)
		return c.State(), fmt.Errorf("enable polling: %w", err)
	}
	c.logger(ctx).Info("Polling enabled")
	c.setState(StateEnabledPolling)
	return StateEnabledPolling, nil
}

// PollTick runs one pass over today's started games. Collaborator failures
// are logged and reported in the result; they never fail the tick.
func (c *Controller) PollTick(ctx context.Context) (TickResult, error) {
	logger := c.logger(ctx)
	now := c.deps.Now()
	res := TickResult{Date: NBADate(now)}

	records, err := c.deps.Records.QueryByDate(ctx, res.Date)
	if err != nil {
		logger.Error("Failed to load games", "date", res.Date, "err", err)
		c.deps.Metrics.IncStoreError("query")
		return c.finishTick(res, OutcomeStoreError), nil
	}

	var started []GameRecord
	for _, rec := range records {
		switch Classify(rec.Status, rec.Clock, rec.StartTime, now) {
		case LifecycleTerminal:
			continue
		case LifecycleLive:
			started = append(started, rec)
		}
		res.Remaining++
	}

	if res.Remaining == 0 {
		logger.Info("No active games left, disabling polling", "date", res.Date, "games", len(records))
		if err := c.deps.Trigger.DisableRecurring(ctx); err != nil {
			logger.Error("Failed to disable polling", "err", err)
			res.TriggerError = err.Error()
		}
		c.setState(StateDisabled)
		return c.finishTick(res, OutcomeNoGames), nil
	}

	c.setState(StateEnabledPolling)
	if len(started) == 0 {
		logger.Debug("No games started yet", "date", res.Date, "remaining", res.Remaining)
		return c.finishTick(res, OutcomeIdle), nil
	}

	rng := c.rng()
	rng.Shuffle(len(started), func(i, j int) { started[i], started[j] = started[j], started[i] })
	userAgent := feed.PickUserAgent(rng)
	res.Active = len(started)

	deadline, hasDeadline := ctx.Deadline()
	for i, rec := range started {
		if ctx.Err() != nil {
			logger.Warn("Tick cut short", "date", res.Date, "processed", res.Processed, "err", ctx.Err())
			break
		}

		updated, final := c.processGame(ctx, rec, userAgent)
		res.Processed++
		c.deps.Metrics.IncGamesProcessed()
		if final {
			res.Final = append(res.Final, rec.ID)
			c.markFinal(ctx, updated)
		}

		var remaining time.Duration
		if hasDeadline {
			remaining = time.Until(deadline)
		}
		d := SafeSleepDuration(rng, remaining, hasDeadline, i, len(started))
		if d <= 0 {
			continue
		}
		c.deps.Metrics.ObserveSleep(d.Seconds())
		if err := c.deps.Sleep(ctx, d); err != nil {
			logger.Warn("Tick cut short during sleep", "date", res.Date, "processed", res.Processed, "err", err)
			break
		}
	}

	return c.finishTick(res, OutcomeProcessed), nil
}

func (c *Controller) finishTick(res TickResult, outcome string) TickResult {
	res.Outcome = outcome
	res.State = c.State()
	c.deps.Metrics.IncTick(outcome)
	return res
}

func (c *Controller) markFinal(ctx context.Context, rec GameRecord) {
	logger := c.logger(ctx)
	c.deps.Metrics.IncGamesFinal()
	if err := c.deps.Manifest.MarkFinal(ctx, rec.ID); err != nil {
		logger.Error("Failed to add game to manifest", "gameID", rec.ID, "err", err)
		c.deps.Metrics.IncStoreError("manifest")
	}
	if c.deps.Notifier == nil {
		return
	}
	if err := c.deps.Notifier.NotifyFinal(ctx, rec); err != nil {
		logger.Warn("Failed to send final notification", "gameID", rec.ID, "err", err)
	}
}
