package entity

import (
	"errors"
	"fmt"
)

// ErrRetryBudgetExhausted terminates a run when consecutive failures at one
// logical step position exceed the configured budget.
var ErrRetryBudgetExhausted = errors.New("retry budget exhausted")

// ObservationError means the page state could not be read.
type ObservationError struct {
	Cause error
}

func (e *ObservationError) Error() string {
	return fmt.Sprintf("could not observe page: %v", e.Cause)
}

func (e *ObservationError) Unwrap() error { return e.Cause }

// DecisionParseError means the LLM response did not validate into one of the
// closed ActionStep variants.
type DecisionParseError struct {
	Raw    string
	Reason string
}

func (e *DecisionParseError) Error() string {
	return fmt.Sprintf("invalid instruction: %s", e.Reason)
}

// LLMServiceError covers transport, auth and rate-limit failures of the LLM
// service. It is retryable through recovery, not fatal.
type LLMServiceError struct {
	Cause error
}

func (e *LLMServiceError) Error() string {
	return fmt.Sprintf("llm service: %v", e.Cause)
}

func (e *LLMServiceError) Unwrap() error { return e.Cause }

// ExecutionError means a driver action failed or timed out.
type ExecutionError struct {
	Step    string
	Detail  string
	Timeout bool
}

func (e *ExecutionError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s timed out: %s", e.Step, e.Detail)
	}
	return fmt.Sprintf("%s failed: %s", e.Step, e.Detail)
}

// StepLimitError means the loop reached the configured step cap without a
// terminal decision.
type StepLimitError struct {
	Limit int
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("step limit exceeded (%d)", e.Limit)
}

// CancelledError means the external cancellation signal fired between
// stages. It is terminal and never routed to recovery.
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("cancelled: %v", e.Cause)
}

func (e *CancelledError) Unwrap() error { return e.Cause }
