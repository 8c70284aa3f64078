package poller

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// DefaultTickBudget bounds one poll tick when the request does not say.
const DefaultTickBudget = 55 * time.Second

// PollRequest is the input of PollWorkflow.
type PollRequest struct {
	TickBudget time.Duration `json:"tickBudget"`
}

func controlActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
	}
}

// ManagerWorkflow runs once a day and arranges when polling starts.
func ManagerWorkflow(ctx workflow.Context) (ManagerResult, error) {
	logger := workflow.GetLogger(ctx)
	ctx = workflow.WithActivityOptions(ctx, controlActivityOptions())

	var c *Controller
	var res ManagerResult
	if err := workflow.ExecuteActivity(ctx, c.ManagerRun).Get(ctx, &res); err != nil {
		logger.Error("Manager run failed", "err", err)
		return res, err
	}
	logger.Info("Manager run completed", "date", res.Date, "state", res.State, "games", res.Games)
	return res, nil
}

// KickoffWorkflow is fired by the one-shot kickoff schedule.
func KickoffWorkflow(ctx workflow.Context) (State, error) {
	logger := workflow.GetLogger(ctx)
	ctx = workflow.WithActivityOptions(ctx, controlActivityOptions())

	var c *Controller
	var state State
	if err := workflow.ExecuteActivity(ctx, c.Kickoff).Get(ctx, &state); err != nil {
		logger.Error("Kickoff failed", "err", err)
		return state, err
	}
	return state, nil
}

// PollWorkflow runs one tick. The tick is not retried: the next scheduled
// tick picks up from the stored records.
func PollWorkflow(ctx workflow.Context, req PollRequest) (TickResult, error) {
	budget := req.TickBudget
	if budget <= 0 {
		budget = DefaultTickBudget
	}
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: budget,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	var c *Controller
	var res TickResult
	err := workflow.ExecuteActivity(ctx, c.PollTick).Get(ctx, &res)
	if err != nil {
		workflow.GetLogger(ctx).Error("Poll tick failed", "err", err)
		return res, err
	}
	return res, nil
}
