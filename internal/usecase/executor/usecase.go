package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"webagent/internal/application/port/output"
	"webagent/internal/domain/entity"
)

const defaultActionTimeout = 30 * time.Second

// Executor dispatches validated steps to the browser driver. It executes a
// step exactly once per call; retry policy belongs to the orchestrator.
type Executor struct {
	browser output.BrowserPort
	creds   output.CredentialPort
	logger  output.LoggerPort
	timeout time.Duration
}

func New(browser output.BrowserPort, creds output.CredentialPort, logger output.LoggerPort, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = defaultActionTimeout
	}
	return &Executor{
		browser: browser,
		creds:   creds,
		logger:  logger,
		timeout: timeout,
	}
}

// Execute runs one step against the driver with a bounded timeout. It never
// returns an error: every outcome, including timeouts, is an
// ExecutionResult so the orchestrator can route it to recovery.
func (e *Executor) Execute(ctx context.Context, step *entity.ActionStep, snapshot *entity.PageSnapshot) entity.ExecutionResult {
	actionCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	started := time.Now()
	value, err := e.dispatch(actionCtx, step, snapshot)
	duration := time.Since(started)

	if err != nil {
		timedOut := errors.Is(err, context.DeadlineExceeded) || actionCtx.Err() == context.DeadlineExceeded
		execErr := &entity.ExecutionError{
			Step:    step.Describe(),
			Detail:  err.Error(),
			Timeout: timedOut,
		}
		e.logger.Error("Action failed", "action", step.Describe(), "error", err, "timeout", timedOut)
		return entity.ExecutionResult{
			Success:     false,
			ErrorDetail: execErr.Error(),
			Duration:    duration,
		}
	}

	e.logger.Info("Action executed", "action", step.Describe(), "durationMs", duration.Milliseconds())
	return entity.ExecutionResult{
		Success:  true,
		Value:    value,
		Duration: duration,
	}
}

func (e *Executor) dispatch(ctx context.Context, step *entity.ActionStep, snapshot *entity.PageSnapshot) (string, error) {
	switch step.Kind {
	case entity.ActionNavigate:
		if err := e.browser.Navigate(ctx, step.URL); err != nil {
			return "", err
		}
		return fmt.Sprintf("now at %s", e.browser.CurrentURL()), nil

	case entity.ActionClick:
		el, ok := snapshot.Element(step.ElementID)
		if !ok {
			return "", fmt.Errorf("element %q not in snapshot", step.ElementID)
		}
		if err := e.browser.Click(ctx, el.Selector); err != nil {
			return "", err
		}
		return "", nil

	case entity.ActionType:
		el, ok := snapshot.Element(step.ElementID)
		if !ok {
			return "", fmt.Errorf("element %q not in snapshot", step.ElementID)
		}
		if err := e.browser.Fill(ctx, el.Selector, step.Text); err != nil {
			return "", err
		}
		return "", nil

	case entity.ActionWait:
		if err := e.browser.WaitFor(ctx, step.Condition); err != nil {
			return "", err
		}
		return "", nil

	case entity.ActionScreenshot:
		shot, err := e.browser.Screenshot(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("screenshot captured (%s, %dx%d, %d bytes)",
			shot.Format, shot.Width, shot.Height, len(shot.Data)), nil

	case entity.ActionLogin:
		return e.login(ctx, step, snapshot)

	default:
		return "", fmt.Errorf("action %q is not executable", step.Kind)
	}
}

// login resolves the credential handle and fills the page's login form.
// Field selectors come from the snapshot when possible so the step works on
// pages the decision engine has already seen.
func (e *Executor) login(ctx context.Context, step *entity.ActionStep, snapshot *entity.PageSnapshot) (string, error) {
	creds, err := e.creds.Resolve(step.CredentialHandle)
	if err != nil {
		return "", fmt.Errorf("resolve credential handle: %w", err)
	}

	userSel, passSel := loginSelectors(snapshot)

	if err := e.browser.Fill(ctx, userSel, creds.Username); err != nil {
		return "", fmt.Errorf("username field: %w", err)
	}
	if err := e.browser.Fill(ctx, passSel, creds.Password); err != nil {
		return "", fmt.Errorf("password field: %w", err)
	}

	return fmt.Sprintf("filled login form for %s", creds.Site), nil
}

func loginSelectors(snapshot *entity.PageSnapshot) (user, pass string) {
	user = "input[type='text'], input[type='email'], input[name*='user']"
	pass = "input[type='password']"

	if snapshot == nil {
		return user, pass
	}
	for _, el := range snapshot.Elements {
		if el.Tag != "input" {
			continue
		}
		switch el.Role {
		case "password":
			pass = el.Selector
		case "email", "text", "username":
			user = el.Selector
		}
	}
	return user, pass
}
