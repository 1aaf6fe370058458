package entity

type RunState string

const (
	StateIdle       RunState = "idle"
	StateObserving  RunState = "observing"
	StateDeciding   RunState = "deciding"
	StateExecuting  RunState = "executing"
	StateRecording  RunState = "recording"
	StateRecovering RunState = "recovering"
	StateTerminated RunState = "terminated"
)

type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunFailure RunStatus = "failure"
)

// RunResult is the terminal outcome of one orchestrator run. Reason and
// Trace are always populated on failure so no error is silently swallowed.
type RunResult struct {
	Status     RunStatus
	Reason     string
	FinalValue string
	Steps      int
	Trace      []ContextEntry
}

func (r *RunResult) Succeeded() bool {
	return r.Status == RunSuccess
}
