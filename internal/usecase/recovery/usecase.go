package recovery

import (
	"context"
	"fmt"

	"webagent/internal/application/port/output"
	"webagent/internal/application/service"
	"webagent/internal/domain/entity"
	"webagent/internal/infrastructure/prompts"
	"webagent/internal/usecase/decision"
)

const (
	defaultMaxRetries = 3
	historyMaxEntries = 10
	historyMaxChars   = 4000
)

// Controller asks the LLM for a corrective action after a failure. It owns
// the RecoveryAttempt counter: consecutive failures at one logical step
// position count against the budget; any success resets it.
type Controller struct {
	llm        output.LLMPort
	renderer   *prompts.Renderer
	logger     output.LoggerPort
	maxRetries int
	attempts   int
}

func New(llm output.LLMPort, renderer *prompts.Renderer, logger output.LoggerPort, maxRetries int) *Controller {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Controller{
		llm:        llm,
		renderer:   renderer,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Reset clears the attempt counter. Called by the orchestrator on any
// successful execution.
func (c *Controller) Reset() {
	c.attempts = 0
}

func (c *Controller) Attempts() int {
	return c.attempts
}

// Recover counts the failure and, while the budget holds, asks the LLM for
// a corrective step validated against the current snapshot. The counter
// reaching maxRetries forces ErrRetryBudgetExhausted: with a budget of 3,
// the third consecutive failure at one step position ends the run. The
// corrective action is unconstrained: the LLM may retry differently or do
// something else entirely.
func (c *Controller) Recover(ctx context.Context, task entity.Task, memory *service.ContextMemory, snapshot *entity.PageSnapshot, failedStep *entity.ActionStep, errorDetail string) (*entity.ActionStep, error) {
	c.attempts++
	if c.attempts >= c.maxRetries {
		c.logger.Warn("Retry budget exhausted", "attempts", c.attempts, "maxRetries", c.maxRetries)
		return nil, fmt.Errorf("%w after %d attempts", entity.ErrRetryBudgetExhausted, c.maxRetries)
	}

	c.logger.Info("Attempting recovery", "attempt", c.attempts, "maxRetries", c.maxRetries, "error", errorDetail)

	failedAction := "(no action attempted)"
	if failedStep != nil {
		failedAction = failedStep.Describe()
	}

	snapshotDesc := "(page state unavailable)"
	if snapshot != nil {
		snapshotDesc = snapshot.Describe()
	}

	prompt, err := c.renderer.Recovery(prompts.RecoveryData{
		Goal:         task.Goal,
		History:      memory.Summarize(historyMaxEntries, historyMaxChars),
		FailedAction: failedAction,
		ErrorDetail:  errorDetail,
		Snapshot:     snapshotDesc,
	})
	if err != nil {
		return nil, err
	}

	raw, err := c.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	step, err := decision.ParseActionStep(raw, snapshot)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Recovery action", "action", step.Describe())
	return step, nil
}
