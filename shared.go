package poller

const TaskQueueName = "nba-game-poller-task-queue"

// Temporal schedule ids. The poll schedule is the recurring trigger the
// controller pauses and unpauses; the kickoff schedule is replaced each day.
const (
	PollScheduleID       = "nba-game-poller"
	KickoffScheduleID    = "nba-daily-kickoff"
	ManagerScheduleID    = "nba-daily-manager"
	ScoreboardScheduleID = "nba-scoreboard-ingest"
)

// Tasks that can be triggered on demand or scheduled once.
const (
	TaskManager = "manager"
	TaskKickoff = "kickoff"
	TaskPoll    = "poll"
	TaskCollect = "collect"
)

// Artifact keys, relative to the artifact prefix.
const (
	rawPlayByPlayKey       = "playByPlayData/"
	processedPlayByPlayKey = "processed-data/playByPlayData/"
	boxScoreKey            = "boxData/"
)

// Workflow type names, as registered by the worker.
const (
	ManagerWorkflowName      = "ManagerWorkflow"
	KickoffWorkflowName      = "KickoffWorkflow"
	PollWorkflowName         = "PollWorkflow"
	CollectGamesWorkflowName = "CollectGamesWorkflow"
)

var taskWorkflows = map[string]string{
	TaskManager: ManagerWorkflowName,
	TaskKickoff: KickoffWorkflowName,
	TaskPoll:    PollWorkflowName,
	TaskCollect: CollectGamesWorkflowName,
}

// WorkflowForTask returns the workflow type that runs task.
func WorkflowForTask(task string) (string, bool) {
	name, ok := taskWorkflows[task]
	return name, ok
}
