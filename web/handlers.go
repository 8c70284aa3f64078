package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	poller "nba-game-poller"
	"nba-game-poller/artifacts"
	"nba-game-poller/metrics"
	"nba-game-poller/trigger"
)

// WorkflowStarter is the part of client.Client the handlers use.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// ScheduleDescriber reports schedule state; trigger.TemporalTrigger satisfies it.
type ScheduleDescriber interface {
	Describe(ctx context.Context, id string) (trigger.Status, error)
}

// Options wires the handlers. Workflows and Schedules may be nil, in which
// case the poller endpoints answer in demo mode.
type Options struct {
	Records    poller.RecordStore
	Workflows  WorkflowStarter
	Schedules  ScheduleDescriber
	Artifacts  *artifacts.FileStore
	Metrics    *metrics.Metrics
	TaskQueue  string
	TickBudget time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
}

type Handlers struct {
	opts Options
}

func NewHandlers(opts Options) *Handlers {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TaskQueue == "" {
		opts.TaskQueue = poller.TaskQueueName
	}
	return &Handlers{opts: opts}
}

// PollerSchedules are the schedules reported by GetPoller, in display order.
var PollerSchedules = []string{
	poller.PollScheduleID,
	poller.KickoffScheduleID,
	poller.ManagerScheduleID,
	poller.ScoreboardScheduleID,
}

// Routes builds the router: rate-limited JSON API, artifacts and metrics.
func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.RequestMiddleware(h.opts.Metrics))

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(120, time.Minute))
		r.Get("/games", h.GetGames)
		r.Get("/poller", h.GetPoller)
		r.Post("/poller/{task}", h.StartTask)
	})

	if h.opts.Artifacts != nil {
		r.Get("/"+h.opts.Artifacts.Prefix()+"*", h.ServeArtifact)
	}
	if h.opts.Metrics != nil {
		r.Handle("/metrics", h.opts.Metrics.Handler())
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// GetGames returns the records for ?date=YYYY-MM-DD, today's NBA date by default.
func (h *Handlers) GetGames(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = poller.NBADate(h.opts.Now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, "Invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if h.opts.Records == nil {
		http.Error(w, "Record store not configured", http.StatusServiceUnavailable)
		return
	}

	games, err := h.opts.Records.QueryByDate(r.Context(), date)
	if err != nil {
		h.opts.Logger.Error("Failed to query games", "date", date, "err", err)
		http.Error(w, "Failed to load games", http.StatusInternalServerError)
		return
	}
	if games == nil {
		games = []poller.GameRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "games": games})
}

// GetPoller reports the state of the poller's schedules.
func (h *Handlers) GetPoller(w http.ResponseWriter, r *http.Request) {
	if h.opts.Schedules == nil {
		statuses := make([]trigger.Status, 0, len(PollerSchedules))
		for _, id := range PollerSchedules {
			statuses = append(statuses, trigger.Status{ID: id, Note: "Demo mode: Temporal server not connected"})
		}
		writeJSON(w, http.StatusOK, statuses)
		return
	}

	statuses := make([]trigger.Status, 0, len(PollerSchedules))
	for _, id := range PollerSchedules {
		st, err := h.opts.Schedules.Describe(r.Context(), id)
		if err != nil {
			h.opts.Logger.Error("Failed to describe schedule", "scheduleID", id, "err", err)
			http.Error(w, fmt.Sprintf("Failed to describe schedule %s", id), http.StatusBadGateway)
			return
		}
		statuses = append(statuses, st)
	}
	writeJSON(w, http.StatusOK, statuses)
}

// StartTask starts the workflow behind one of the poller's tasks.
func (h *Handlers) StartTask(w http.ResponseWriter, r *http.Request) {
	task := chi.URLParam(r, "task")
	workflow, ok := poller.WorkflowForTask(task)
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown task %q", task), http.StatusNotFound)
		return
	}

	if h.opts.Workflows == nil {
		now := h.opts.Now()
		writeJSON(w, http.StatusOK, map[string]string{
			"workflowId": "demo-" + task + "-" + now.Format("20060102-150405"),
			"runId":      "demo-run-" + now.Format("150405"),
			"message":    "Demo mode: task received (Temporal server not connected)",
		})
		return
	}

	var args []interface{}
	if task == poller.TaskPoll {
		args = append(args, poller.PollRequest{TickBudget: h.opts.TickBudget})
	}
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("%s-%s", task, uuid.NewString()),
		TaskQueue: h.opts.TaskQueue,
	}

	we, err := h.opts.Workflows.ExecuteWorkflow(r.Context(), options, workflow, args...)
	if err != nil {
		h.opts.Logger.Error("Failed to start workflow", "task", task, "err", err)
		http.Error(w, fmt.Sprintf("Failed to start workflow: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"workflowId": we.GetID(),
		"runId":      we.GetRunID(),
		"message":    "Task started",
	})
}

// ServeArtifact replays a stored artifact with the headers it was written with.
// Requests may name the object with or without its .gz suffix.
func (h *Handlers) ServeArtifact(w http.ResponseWriter, r *http.Request) {
	objectPath := strings.TrimPrefix(r.URL.Path, "/")
	if !strings.HasSuffix(objectPath, ".gz") {
		objectPath += ".gz"
	}

	obj, err := h.opts.Artifacts.Open(objectPath)
	if errors.Is(err, artifacts.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.opts.Logger.Error("Failed to open artifact", "path", objectPath, "err", err)
		http.Error(w, "Failed to read artifact", http.StatusInternalServerError)
		return
	}

	hdr := w.Header()
	if obj.Meta.ContentType != "" {
		hdr.Set("Content-Type", obj.Meta.ContentType)
	}
	if obj.Meta.ContentEncoding != "" {
		hdr.Set("Content-Encoding", obj.Meta.ContentEncoding)
	}
	if obj.Meta.CacheControl != "" {
		hdr.Set("Cache-Control", obj.Meta.CacheControl)
	}
	w.Write(obj.Data)
}
