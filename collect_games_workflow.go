package poller

import (
	"go.temporal.io/sdk/workflow"
)

// CollectGamesWorkflow loads today's scoreboard into the record store. When
// games are still to come it runs the manager so the kickoff reflects the
// fresh start times.
func CollectGamesWorkflow(ctx workflow.Context) (int, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting Collect Games Workflow.")

	ctx = workflow.WithActivityOptions(ctx, controlActivityOptions())

	var c *Controller
	var ingest IngestResult
	if err := workflow.ExecuteActivity(ctx, c.IngestScoreboard).Get(ctx, &ingest); err != nil {
		logger.Error("Failed to ingest scoreboard", "err", err)
		return 0, err
	}
	logger.Info("Ingested games", "date", ingest.Date, "count", ingest.Upserted, "upcoming", ingest.Upcoming)

	if ingest.Upcoming > 0 {
		var res ManagerResult
		if err := workflow.ExecuteActivity(ctx, c.ManagerRun).Get(ctx, &res); err != nil {
			logger.Error("Failed to run manager after ingest", "err", err)
			return ingest.Upserted, err
		}
	}

	logger.Info("Collect Games Workflow completed.")
	return ingest.Upserted, nil
}
