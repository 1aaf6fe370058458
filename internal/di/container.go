package di

import (
	"context"
	"fmt"
	"time"

	"webagent/internal/application/port/input"
	"webagent/internal/application/port/output"
	"webagent/internal/infrastructure/browser/rod"
	"webagent/internal/infrastructure/credentials"
	"webagent/internal/infrastructure/llm/openrouter"
	"webagent/internal/infrastructure/logger"
	"webagent/internal/infrastructure/prompts"
	"webagent/internal/usecase/decision"
	"webagent/internal/usecase/executor"
	"webagent/internal/usecase/observer"
	"webagent/internal/usecase/orchestrator"
	"webagent/internal/usecase/recovery"
)

type Container struct {
	Browser     output.BrowserPort
	LLM         output.LLMPort
	Logger      output.LoggerPort
	Credentials *credentials.Store
	TaskRunner  input.TaskRunner
}

type Config struct {
	OpenRouterAPIKey string
	OpenRouterModel  string
	BrowserHeadless  bool
	MaxSteps         int
	MaxRetries       int
	ActionTimeout    time.Duration
	Verbose          bool
	CredentialsPath  string
	CredentialsKey   string
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	logCfg := logger.DefaultConfig()
	logCfg.Verbose = cfg.Verbose
	log, err := logger.NewZapAdapter(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = cfg.BrowserHeadless
	if cfg.ActionTimeout > 0 {
		browserCfg.Timeout = cfg.ActionTimeout
	}
	browser, err := rod.NewBrowserAdapter(ctx, browserCfg)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	llmCfg := openrouter.DefaultConfig(cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
	llmCfg.Logger = log
	llm := openrouter.NewOpenRouterAdapter(llmCfg)

	renderer, err := prompts.NewRenderer()
	if err != nil {
		browser.Close()
		log.Close()
		return nil, fmt.Errorf("failed to create prompt renderer: %w", err)
	}

	creds := credentials.NewStore(cfg.CredentialsPath, cfg.CredentialsKey)

	obs := observer.New(browser, log, observer.DefaultConfig())
	engine := decision.New(llm, renderer, log)
	exec := executor.New(browser, creds, log, cfg.ActionTimeout)
	rec := recovery.New(llm, renderer, log, cfg.MaxRetries)

	runner := orchestrator.New(obs, engine, exec, rec, log, cfg.MaxSteps)

	return &Container{
		Browser:     browser,
		LLM:         llm,
		Logger:      log,
		Credentials: creds,
		TaskRunner:  runner,
	}, nil
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
