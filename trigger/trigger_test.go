package trigger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	poller "nba-game-poller"
)

type fakeHandle struct {
	client.ScheduleHandle
	id       string
	paused   bool
	deleted  bool
	err      error
	describe *client.ScheduleDescription
}

func (h *fakeHandle) GetID() string { return h.id }

func (h *fakeHandle) Pause(ctx context.Context, opts client.SchedulePauseOptions) error {
	if h.err != nil {
		return h.err
	}
	h.paused = true
	return nil
}

func (h *fakeHandle) Unpause(ctx context.Context, opts client.ScheduleUnpauseOptions) error {
	if h.err != nil {
		return h.err
	}
	h.paused = false
	return nil
}

func (h *fakeHandle) Delete(ctx context.Context) error {
	if h.err != nil {
		return h.err
	}
	h.deleted = true
	return nil
}

func (h *fakeHandle) Describe(ctx context.Context) (*client.ScheduleDescription, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.describe, nil
}

type fakeSchedules struct {
	client.ScheduleClient
	handles   map[string]*fakeHandle
	created   []client.ScheduleOptions
	createErr map[string]error
}

func newFakeSchedules() *fakeSchedules {
	return &fakeSchedules{handles: map[string]*fakeHandle{}, createErr: map[string]error{}}
}

func (f *fakeSchedules) GetHandle(ctx context.Context, id string) client.ScheduleHandle {
	h, ok := f.handles[id]
	if !ok {
		return &fakeHandle{id: id, err: serviceerror.NewNotFound("schedule not found")}
	}
	return h
}

func (f *fakeSchedules) Create(ctx context.Context, opts client.ScheduleOptions) (client.ScheduleHandle, error) {
	if err := f.createErr[opts.ID]; err != nil {
		return nil, err
	}
	f.created = append(f.created, opts)
	h := &fakeHandle{id: opts.ID, paused: opts.Paused}
	f.handles[opts.ID] = h
	return h, nil
}

func newTestTrigger(f *fakeSchedules) *TemporalTrigger {
	return New(f, Options{TaskQueue: "q", PollInterval: time.Minute, TickBudget: 55 * time.Second})
}

func TestEnableRecurring_UnpausesExisting(t *testing.T) {
	f := newFakeSchedules()
	f.handles[poller.PollScheduleID] = &fakeHandle{id: poller.PollScheduleID, paused: true}

	require.NoError(t, newTestTrigger(f).EnableRecurring(context.Background()))
	assert.False(t, f.handles[poller.PollScheduleID].paused)
	assert.Empty(t, f.created)
}

func TestEnableRecurring_CreatesMissing(t *testing.T) {
	f := newFakeSchedules()

	require.NoError(t, newTestTrigger(f).EnableRecurring(context.Background()))
	require.Len(t, f.created, 1)
	opts := f.created[0]
	assert.Equal(t, poller.PollScheduleID, opts.ID)
	assert.False(t, opts.Paused)
	assert.Equal(t, enumspb.SCHEDULE_OVERLAP_POLICY_SKIP, opts.Overlap)
	assert.Equal(t, time.Minute, opts.Spec.Intervals[0].Every)

	action, ok := opts.Action.(*client.ScheduleWorkflowAction)
	require.True(t, ok)
	assert.Equal(t, poller.PollWorkflowName, action.Workflow)
	assert.Equal(t, "q", action.TaskQueue)
	assert.Equal(t, []interface{}{poller.PollRequest{TickBudget: 55 * time.Second}}, action.Args)
}

func TestEnableRecurring_Error(t *testing.T) {
	f := newFakeSchedules()
	f.handles[poller.PollScheduleID] = &fakeHandle{err: errors.New("unavailable")}

	assert.Error(t, newTestTrigger(f).EnableRecurring(context.Background()))
}

func TestDisableRecurring(t *testing.T) {
	f := newFakeSchedules()
	f.handles[poller.PollScheduleID] = &fakeHandle{id: poller.PollScheduleID}
	require.NoError(t, newTestTrigger(f).DisableRecurring(context.Background()))
	assert.True(t, f.handles[poller.PollScheduleID].paused)

	assert.NoError(t, newTestTrigger(newFakeSchedules()).DisableRecurring(context.Background()))

	broken := newFakeSchedules()
	broken.handles[poller.PollScheduleID] = &fakeHandle{err: errors.New("unavailable")}
	assert.Error(t, newTestTrigger(broken).DisableRecurring(context.Background()))
}

func TestScheduleOnce_ReplacesPending(t *testing.T) {
	f := newFakeSchedules()
	old := &fakeHandle{id: poller.KickoffScheduleID}
	f.handles[poller.KickoffScheduleID] = old

	et, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	at := time.Date(2024, 1, 15, 19, 15, 30, 0, et)

	require.NoError(t, newTestTrigger(f).ScheduleOnce(context.Background(), at, poller.TaskKickoff))

	assert.True(t, old.deleted)
	require.Len(t, f.created, 1)
	opts := f.created[0]
	assert.Equal(t, poller.KickoffScheduleID, opts.ID)
	assert.Equal(t, 1, opts.RemainingActions)
	assert.Equal(t, "UTC", opts.Spec.TimeZoneName)

	cal := opts.Spec.Calendars[0]
	assert.Equal(t, 2024, cal.Year[0].Start)
	assert.Equal(t, 1, cal.Month[0].Start)
	assert.Equal(t, 16, cal.DayOfMonth[0].Start)
	assert.Equal(t, 0, cal.Hour[0].Start)
	assert.Equal(t, 15, cal.Minute[0].Start)
	assert.Equal(t, 30, cal.Second[0].Start)

	action := opts.Action.(*client.ScheduleWorkflowAction)
	assert.Equal(t, poller.KickoffWorkflowName, action.Workflow)
}

func TestScheduleOnce_NoPendingSchedule(t *testing.T) {
	f := newFakeSchedules()
	require.NoError(t, newTestTrigger(f).ScheduleOnce(context.Background(), time.Now().Add(time.Hour), poller.TaskKickoff))
	assert.Len(t, f.created, 1)
}

func TestScheduleOnce_Errors(t *testing.T) {
	f := newFakeSchedules()
	assert.Error(t, newTestTrigger(f).ScheduleOnce(context.Background(), time.Now(), "bogus"))

	f.createErr[poller.KickoffScheduleID] = errors.New("denied")
	assert.Error(t, newTestTrigger(f).ScheduleOnce(context.Background(), time.Now(), poller.TaskKickoff))

	f = newFakeSchedules()
	f.handles[poller.KickoffScheduleID] = &fakeHandle{err: errors.New("unavailable")}
	assert.Error(t, newTestTrigger(f).ScheduleOnce(context.Background(), time.Now(), poller.TaskKickoff))
	assert.Empty(t, f.created)
}

func TestOnceScheduleID(t *testing.T) {
	assert.Equal(t, poller.KickoffScheduleID, OnceScheduleID(poller.TaskKickoff))
	assert.Equal(t, "nba-once-manager", OnceScheduleID(poller.TaskManager))
}

func TestEnsureSchedules(t *testing.T) {
	f := newFakeSchedules()
	f.createErr[poller.ManagerScheduleID] = temporal.ErrScheduleAlreadyRunning

	require.NoError(t, newTestTrigger(f).EnsureSchedules(context.Background()))

	require.Len(t, f.created, 2)
	assert.Equal(t, poller.ScoreboardScheduleID, f.created[0].ID)
	assert.Equal(t, "America/New_York", f.created[0].Spec.TimeZoneName)
	assert.Equal(t, 10, f.created[0].Spec.Calendars[0].Hour[0].Start)
	assert.Equal(t, poller.PollScheduleID, f.created[1].ID)
	assert.True(t, f.created[1].Paused)

	f = newFakeSchedules()
	f.createErr[poller.PollScheduleID] = errors.New("denied")
	assert.Error(t, newTestTrigger(f).EnsureSchedules(context.Background()))
}

func TestDescribe(t *testing.T) {
	next := time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC)
	f := newFakeSchedules()
	f.handles[poller.PollScheduleID] = &fakeHandle{describe: &client.ScheduleDescription{
		Schedule: client.Schedule{State: &client.ScheduleState{Paused: true, Note: "no active games"}},
		Info:     client.ScheduleInfo{NextActionTimes: []time.Time{next}, NumActions: 4},
	}}
	tr := newTestTrigger(f)

	st, err := tr.Describe(context.Background(), poller.PollScheduleID)
	require.NoError(t, err)
	assert.True(t, st.Exists)
	assert.True(t, st.Paused)
	assert.Equal(t, "no active games", st.Note)
	assert.Equal(t, []time.Time{next}, st.NextRuns)
	assert.Equal(t, 4, st.Actions)

	st, err = tr.Describe(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, st.Exists)
}
