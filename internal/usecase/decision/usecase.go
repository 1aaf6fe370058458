package decision

import (
	"context"

	"webagent/internal/application/port/output"
	"webagent/internal/application/service"
	"webagent/internal/domain/entity"
	"webagent/internal/infrastructure/prompts"
)

const (
	historyMaxEntries = 10
	historyMaxChars   = 4000
)

// Engine asks the LLM for the next action. One LLM call per Decide; it
// never retries — failed decisions are the orchestrator's problem.
type Engine struct {
	llm      output.LLMPort
	renderer *prompts.Renderer
	logger   output.LoggerPort
}

func New(llm output.LLMPort, renderer *prompts.Renderer, logger output.LoggerPort) *Engine {
	return &Engine{
		llm:      llm,
		renderer: renderer,
		logger:   logger,
	}
}

// Decide builds the prompt deterministically from task, history and
// snapshot, invokes the LLM once and parses the response into a validated
// step. Parse and element-id failures surface as DecisionParseError.
func (e *Engine) Decide(ctx context.Context, task entity.Task, memory *service.ContextMemory, snapshot *entity.PageSnapshot) (*entity.ActionStep, error) {
	prompt, err := e.renderer.Decision(prompts.DecisionData{
		Goal:     task.Goal,
		History:  memory.Summarize(historyMaxEntries, historyMaxChars),
		Snapshot: snapshot.Describe(),
	})
	if err != nil {
		return nil, err
	}

	raw, err := e.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	step, err := ParseActionStep(raw, snapshot)
	if err != nil {
		e.logger.Warn("Decision did not validate", "error", err)
		return nil, err
	}

	e.logger.Info("Decision", "action", step.Describe())
	return step, nil
}
