package entity

import "time"

// ExecutionResult is the outcome of executing one ActionStep.
type ExecutionResult struct {
	Success     bool
	ErrorDetail string
	Value       string
	Duration    time.Duration
}

// ContextEntry ties a step and its result to the snapshot that was current
// at decision time. Entries are append-only and run-scoped.
type ContextEntry struct {
	SnapshotSummary string
	Step            ActionStep
	Result          ExecutionResult
	RecordedAt      time.Time
}
