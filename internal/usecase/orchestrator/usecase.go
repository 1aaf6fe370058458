package orchestrator

import (
	"context"
	"errors"
	"time"

	"webagent/internal/application/port/input"
	"webagent/internal/application/port/output"
	"webagent/internal/application/service"
	"webagent/internal/domain/entity"
	"webagent/internal/usecase/decision"
	"webagent/internal/usecase/executor"
	"webagent/internal/usecase/observer"
	"webagent/internal/usecase/recovery"
)

var _ input.TaskRunner = (*Orchestrator)(nil)

// The LLM-driven loop has no structural guarantee of convergence, so runs
// are always capped. Default matches the original behavior of ten guided
// steps per task.
const defaultMaxSteps = 10

// Orchestrator drives the task loop:
// Observe -> Decide -> Execute -> Record -> (Recover on failure) -> Observe,
// until a terminal decision, the step limit, an exhausted retry budget, or
// cancellation.
type Orchestrator struct {
	observer *observer.Observer
	engine   *decision.Engine
	executor *executor.Executor
	recovery *recovery.Controller
	logger   output.LoggerPort
	maxSteps int
}

func New(
	obs *observer.Observer,
	engine *decision.Engine,
	exec *executor.Executor,
	rec *recovery.Controller,
	logger output.LoggerPort,
	maxSteps int,
) *Orchestrator {
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	return &Orchestrator{
		observer: obs,
		engine:   engine,
		executor: exec,
		recovery: rec,
		logger:   logger,
		maxSteps: maxSteps,
	}
}

// Run executes one task to a terminal state. The returned RunResult always
// carries a reason and the full trace; Run itself only errors on
// cancellation so callers can distinguish an answered failure from an
// interrupted one.
func (o *Orchestrator) Run(ctx context.Context, task entity.Task) (*entity.RunResult, error) {
	memory := service.NewContextMemory()
	o.recovery.Reset()

	log := o.logger.WithField("task", task.ID)
	log.Info("Run started", "goal", task.Goal, "maxSteps", o.maxSteps)

	// Last snapshot that was successfully captured. Recovery from an
	// observation failure decides against this (possibly nil) state.
	var lastSnapshot *entity.PageSnapshot

	for {
		if memory.Len() >= o.maxSteps {
			limitErr := &entity.StepLimitError{Limit: o.maxSteps}
			return o.terminate(log, memory, entity.RunFailure, limitErr.Error(), ""), nil
		}

		if err := cancelled(ctx); err != nil {
			return o.terminate(log, memory, entity.RunFailure, err.Error(), ""), err
		}

		// Observing.
		snapshot, err := o.observer.Capture(ctx)
		var step *entity.ActionStep
		if err != nil {
			// No step was attempted yet; recovery is told the page
			// could not be observed and decides over the last known
			// state.
			log.Warn("Observation failed", "error", err)
			step, err = o.recoverLoop(ctx, task, memory, lastSnapshot, nil, err.Error())
			if err != nil {
				return o.terminateOnRecoveryFailure(log, memory, err)
			}
			snapshot = lastSnapshot
		} else {
			lastSnapshot = snapshot

			if err := cancelled(ctx); err != nil {
				return o.terminate(log, memory, entity.RunFailure, err.Error(), ""), err
			}

			// Deciding.
			step, err = o.engine.Decide(ctx, task, memory, snapshot)
			if err != nil {
				// Parse and LLM-service failures are treated exactly
				// like execution failures.
				step, err = o.recoverLoop(ctx, task, memory, snapshot, nil, err.Error())
				if err != nil {
					return o.terminateOnRecoveryFailure(log, memory, err)
				}
			}
		}

		if step.IsTerminal() {
			return o.terminateOnStep(log, memory, snapshot, step), nil
		}

		// Executing, with the recovery loop for this step position.
		done, result, runErr := o.executeWithRecovery(ctx, log, task, memory, snapshot, step)
		if done {
			return result, runErr
		}
		// Recording done inside executeWithRecovery; loop back to Observing.
	}
}

// executeWithRecovery runs one logical step position: execute, record, and
// on failure keep asking recovery for corrective steps until one succeeds,
// the budget runs out, or a terminal step is proposed. done is false when
// the loop should continue with the next observation.
func (o *Orchestrator) executeWithRecovery(ctx context.Context, log output.LoggerPort, task entity.Task, memory *service.ContextMemory, snapshot *entity.PageSnapshot, step *entity.ActionStep) (bool, *entity.RunResult, error) {
	for {
		if err := cancelled(ctx); err != nil {
			return true, o.terminate(log, memory, entity.RunFailure, err.Error(), ""), err
		}

		result := o.executor.Execute(ctx, step, snapshot)

		// Recording. Every execution outcome is recorded, success or not.
		memory.Append(entity.ContextEntry{
			SnapshotSummary: snapshotSummary(snapshot),
			Step:            *step,
			Result:          result,
			RecordedAt:      time.Now(),
		})

		if result.Success {
			o.recovery.Reset()
			return false, nil, nil
		}

		next, err := o.recoverLoop(ctx, task, memory, snapshot, step, result.ErrorDetail)
		if err != nil {
			res, runErr := o.terminateOnRecoveryFailure(log, memory, err)
			return true, res, runErr
		}
		if next.IsTerminal() {
			return true, o.terminateOnStep(log, memory, snapshot, next), nil
		}
		step = next
	}
}

// recoverLoop keeps invoking the recovery controller until it yields a
// valid step or the budget is exhausted. Recovery's own parse and LLM
// failures feed back in as the next error detail and count against the
// same budget, so the chain is finite.
func (o *Orchestrator) recoverLoop(ctx context.Context, task entity.Task, memory *service.ContextMemory, snapshot *entity.PageSnapshot, failedStep *entity.ActionStep, errorDetail string) (*entity.ActionStep, error) {
	for {
		if err := cancelled(ctx); err != nil {
			return nil, err
		}

		step, err := o.recovery.Recover(ctx, task, memory, snapshot, failedStep, errorDetail)
		if err == nil {
			return step, nil
		}
		if errors.Is(err, entity.ErrRetryBudgetExhausted) {
			return nil, err
		}
		errorDetail = err.Error()
	}
}

// terminateOnStep records the terminal decision and ends the run. Terminal
// steps count as a completed cycle but never reach the driver.
func (o *Orchestrator) terminateOnStep(log output.LoggerPort, memory *service.ContextMemory, snapshot *entity.PageSnapshot, step *entity.ActionStep) *entity.RunResult {
	success := step.Kind == entity.ActionFinish
	memory.Append(entity.ContextEntry{
		SnapshotSummary: snapshotSummary(snapshot),
		Step:            *step,
		Result:          entity.ExecutionResult{Success: success, Value: step.Result, ErrorDetail: step.Reason},
		RecordedAt:      time.Now(),
	})

	if success {
		return o.terminate(log, memory, entity.RunSuccess, "task completed", step.Result)
	}
	return o.terminate(log, memory, entity.RunFailure, step.Reason, "")
}

func (o *Orchestrator) terminateOnRecoveryFailure(log output.LoggerPort, memory *service.ContextMemory, err error) (*entity.RunResult, error) {
	var cancelErr *entity.CancelledError
	if errors.As(err, &cancelErr) {
		return o.terminate(log, memory, entity.RunFailure, err.Error(), ""), err
	}
	return o.terminate(log, memory, entity.RunFailure, err.Error(), ""), nil
}

func (o *Orchestrator) terminate(log output.LoggerPort, memory *service.ContextMemory, status entity.RunStatus, reason, value string) *entity.RunResult {
	result := &entity.RunResult{
		Status:     status,
		Reason:     reason,
		FinalValue: value,
		Steps:      memory.Len(),
		Trace:      memory.Entries(),
	}
	log.Info("Run terminated", "status", status, "reason", reason, "steps", result.Steps)
	return result
}

// cancelled converts an external cancellation signal into the typed
// terminal error. Checked between stages only; in-flight driver and LLM
// calls are left to complete or time out on their own.
func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &entity.CancelledError{Cause: err}
	}
	return nil
}

func snapshotSummary(s *entity.PageSnapshot) string {
	if s == nil {
		return "(page state unavailable)"
	}
	return s.Summary()
}
