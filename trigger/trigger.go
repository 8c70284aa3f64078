package trigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	poller "nba-game-poller"
)

const easternZone = "America/New_York"

// Options configure the schedules the trigger manages.
type Options struct {
	TaskQueue    string
	PollInterval time.Duration
	TickBudget   time.Duration
}

// TemporalTrigger drives the poller's cadence with Temporal schedules. The
// recurring poll is a schedule that is paused and unpaused; one-shot tasks are
// calendar schedules with a single remaining action.
type TemporalTrigger struct {
	schedules client.ScheduleClient
	opts      Options
}

func New(schedules client.ScheduleClient, opts Options) *TemporalTrigger {
	if opts.TaskQueue == "" {
		opts.TaskQueue = poller.TaskQueueName
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Minute
	}
	return &TemporalTrigger{schedules: schedules, opts: opts}
}

func isNotFound(err error) bool {
	var notFound *serviceerror.NotFound
	return errors.As(err, &notFound)
}

func (t *TemporalTrigger) pollScheduleOptions(paused bool) client.ScheduleOptions {
	return client.ScheduleOptions{
		ID: poller.PollScheduleID,
		Spec: client.ScheduleSpec{
			Intervals: []client.ScheduleIntervalSpec{{Every: t.opts.PollInterval}},
		},
		Action: &client.ScheduleWorkflowAction{
			ID:        poller.PollScheduleID + "-tick",
			Workflow:  poller.PollWorkflowName,
			Args:      []interface{}{poller.PollRequest{TickBudget: t.opts.TickBudget}},
			TaskQueue: t.opts.TaskQueue,
		},
		Overlap: enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
		Paused:  paused,
	}
}

// EnableRecurring unpauses the poll schedule, creating it when it does not exist.
func (t *TemporalTrigger) EnableRecurring(ctx context.Context) error {
	handle := t.schedules.GetHandle(ctx, poller.PollScheduleID)
	err := handle.Unpause(ctx, client.ScheduleUnpauseOptions{Note: "games in progress"})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("unpause poll schedule: %w", err)
	}
	if _, err := t.schedules.Create(ctx, t.pollScheduleOptions(false)); err != nil {
		return fmt.Errorf("create poll schedule: %w", err)
	}
	return nil
}

// DisableRecurring pauses the poll schedule. A missing schedule is already disabled.
func (t *TemporalTrigger) DisableRecurring(ctx context.Context) error {
	handle := t.schedules.GetHandle(ctx, poller.PollScheduleID)
	err := handle.Pause(ctx, client.SchedulePauseOptions{Note: "no active games"})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("pause poll schedule: %w", err)
	}
	return nil
}

// OnceScheduleID is the schedule that runs task once.
func OnceScheduleID(task string) string {
	if task == poller.TaskKickoff {
		return poller.KickoffScheduleID
	}
	return "nba-once-" + task
}

// ScheduleOnce replaces any pending one-shot schedule for task with one that
// fires at the given instant.
func (t *TemporalTrigger) ScheduleOnce(ctx context.Context, at time.Time, task string) error {
	workflowName, ok := poller.WorkflowForTask(task)
	if !ok {
		return fmt.Errorf("unknown task %q", task)
	}
	id := OnceScheduleID(task)

	if err := t.schedules.GetHandle(ctx, id).Delete(ctx); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete schedule %s: %w", id, err)
	}

	at = at.UTC()
	_, err := t.schedules.Create(ctx, client.ScheduleOptions{
		ID: id,
		Spec: client.ScheduleSpec{
			Calendars:    []client.ScheduleCalendarSpec{calendarAt(at)},
			TimeZoneName: "UTC",
		},
		Action: &client.ScheduleWorkflowAction{
			ID:        fmt.Sprintf("%s-%s", task, at.Format("20060102-150405")),
			Workflow:  workflowName,
			TaskQueue: t.opts.TaskQueue,
		},
		Overlap:          enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
		RemainingActions: 1,
	})
	if err != nil {
		return fmt.Errorf("create schedule %s: %w", id, err)
	}
	return nil
}

func calendarAt(at time.Time) client.ScheduleCalendarSpec {
	single := func(v int) []client.ScheduleRange {
		return []client.ScheduleRange{{Start: v}}
	}
	return client.ScheduleCalendarSpec{
		Second:     single(at.Second()),
		Minute:     single(at.Minute()),
		Hour:       single(at.Hour()),
		DayOfMonth: single(at.Day()),
		Month:      single(int(at.Month())),
		Year:       single(at.Year()),
		Comment:    "one-shot",
	}
}

func dailyAt(hour int, comment string) client.ScheduleSpec {
	return client.ScheduleSpec{
		Calendars: []client.ScheduleCalendarSpec{{
			Hour:    []client.ScheduleRange{{Start: hour}},
			Comment: comment,
		}},
		TimeZoneName: easternZone,
	}
}

// EnsureSchedules creates the daily manager and scoreboard schedules and the
// paused poll schedule. Schedules that already exist are left untouched.
func (t *TemporalTrigger) EnsureSchedules(ctx context.Context) error {
	all := []client.ScheduleOptions{
		{
			ID:   poller.ManagerScheduleID,
			Spec: dailyAt(12, "daily manager"),
			Action: &client.ScheduleWorkflowAction{
				ID:        poller.ManagerScheduleID + "-run",
				Workflow:  poller.ManagerWorkflowName,
				TaskQueue: t.opts.TaskQueue,
			},
			Overlap: enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
		},
		{
			ID:   poller.ScoreboardScheduleID,
			Spec: dailyAt(10, "daily scoreboard ingest"),
			Action: &client.ScheduleWorkflowAction{
				ID:        poller.ScoreboardScheduleID + "-run",
				Workflow:  poller.CollectGamesWorkflowName,
				TaskQueue: t.opts.TaskQueue,
			},
			Overlap: enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
		},
		t.pollScheduleOptions(true),
	}

	var errs []error
	for _, opts := range all {
		_, err := t.schedules.Create(ctx, opts)
		if err != nil && !errors.Is(err, temporal.ErrScheduleAlreadyRunning) {
			errs = append(errs, fmt.Errorf("create schedule %s: %w", opts.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Status is a summary of one schedule.
type Status struct {
	ID       string      `json:"id"`
	Exists   bool        `json:"exists"`
	Paused   bool        `json:"paused"`
	Note     string      `json:"note,omitempty"`
	NextRuns []time.Time `json:"nextRuns,omitempty"`
	Actions  int         `json:"actions"`
}

// Describe reports the state of a schedule. A missing schedule is not an error.
func (t *TemporalTrigger) Describe(ctx context.Context, id string) (Status, error) {
	desc, err := t.schedules.GetHandle(ctx, id).Describe(ctx)
	if err != nil {
		if isNotFound(err) {
			return Status{ID: id}, nil
		}
		return Status{}, fmt.Errorf("describe schedule %s: %w", id, err)
	}
	st := Status{ID: id, Exists: true, NextRuns: desc.Info.NextActionTimes, Actions: desc.Info.NumActions}
	if desc.Schedule.State != nil {
		st.Paused = desc.Schedule.State.Paused
		st.Note = desc.Schedule.State.Note
	}
	return st, nil
}
