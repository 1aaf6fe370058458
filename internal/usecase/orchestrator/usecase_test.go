package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"webagent/internal/domain/entity"
	"webagent/internal/infrastructure/logger"
	"webagent/internal/infrastructure/prompts"
	"webagent/internal/usecase/decision"
	"webagent/internal/usecase/executor"
	"webagent/internal/usecase/observer"
	"webagent/internal/usecase/recovery"
)

// scriptedLLM replays a fixed sequence of responses, then keeps returning
// fallback. Every prompt is recorded.
type scriptedLLM struct {
	responses []string
	fallback  string
	prompts   []string
}

func (m *scriptedLLM) Complete(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if len(m.responses) > 0 {
		r := m.responses[0]
		m.responses = m.responses[1:]
		return r, nil
	}
	return m.fallback, nil
}

type scriptedBrowser struct {
	elements      []entity.UIElement
	pageInfoFails int
	clickErr      error
	clickFails    int // clickErr applies to this many clicks; 0 means always
	actions       []string
	url           string
}

func (b *scriptedBrowser) Navigate(ctx context.Context, url string) error {
	b.actions = append(b.actions, "navigate:"+url)
	b.url = url
	return nil
}

func (b *scriptedBrowser) Click(ctx context.Context, selector string) error {
	b.actions = append(b.actions, "click:"+selector)
	if b.clickErr != nil && b.clickFails > 0 {
		b.clickFails--
		if b.clickFails == 0 {
			err := b.clickErr
			b.clickErr = nil
			return err
		}
		return b.clickErr
	}
	return b.clickErr
}

func (b *scriptedBrowser) Fill(ctx context.Context, selector, text string) error {
	b.actions = append(b.actions, "fill:"+selector)
	return nil
}

func (b *scriptedBrowser) WaitFor(ctx context.Context, condition string) error {
	b.actions = append(b.actions, "wait:"+condition)
	return nil
}

func (b *scriptedBrowser) PageInfo(ctx context.Context) (string, string, error) {
	if b.pageInfoFails > 0 {
		b.pageInfoFails--
		return "", "", fmt.Errorf("target crashed")
	}
	return b.url, "Test Page", nil
}

func (b *scriptedBrowser) UIElements(ctx context.Context) ([]entity.UIElement, error) {
	return b.elements, nil
}

func (b *scriptedBrowser) PageText(ctx context.Context) (string, error) {
	return "Example Domain", nil
}

func (b *scriptedBrowser) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	b.actions = append(b.actions, "screenshot")
	return &entity.Screenshot{Data: []byte{1}, Format: "jpeg", Width: 800, Height: 600}, nil
}

func (b *scriptedBrowser) CurrentURL() string { return b.url }
func (b *scriptedBrowser) Close()             {}

type emptyCredentials struct{}

func (emptyCredentials) Resolve(handle string) (*entity.Credentials, error) {
	return nil, fmt.Errorf("unknown credential handle")
}

func pageElements() []entity.UIElement {
	return []entity.UIElement{
		{ID: "el-0000", Tag: "button", Label: "Submit", Selector: "#submit"},
		{ID: "el-0001", Tag: "input", Role: "text", Label: "Search", Selector: "#q"},
	}
}

func newOrchestrator(t *testing.T, browser *scriptedBrowser, llm *scriptedLLM, maxSteps, maxRetries int) *Orchestrator {
	t.Helper()
	renderer, err := prompts.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	log := logger.NewNop()
	obs := observer.New(browser, log, observer.DefaultConfig())
	engine := decision.New(llm, renderer, log)
	exec := executor.New(browser, emptyCredentials{}, log, time.Second)
	rec := recovery.New(llm, renderer, log, maxRetries)
	return New(obs, engine, exec, rec, log, maxSteps)
}

func TestRunNavigateThenFinish(t *testing.T) {
	browser := &scriptedBrowser{elements: pageElements()}
	llm := &scriptedLLM{responses: []string{
		`{"action": "navigate", "url": "https://example.com"}`,
		`{"action": "finish", "result": "the page title is Example Domain"}`,
	}}
	o := newOrchestrator(t, browser, llm, 10, 3)

	result, err := o.Run(context.Background(), entity.NewTask("t1", "read the page title"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Succeeded() {
		t.Fatalf("expected success, got %s: %s", result.Status, result.Reason)
	}
	if result.Steps != 2 {
		t.Errorf("expected 2 recorded steps, got %d", result.Steps)
	}
	if result.FinalValue != "the page title is Example Domain" {
		t.Errorf("unexpected final value: %q", result.FinalValue)
	}
	if len(result.Trace) != 2 {
		t.Fatalf("expected 2 trace entries, got %d", len(result.Trace))
	}
	if result.Trace[0].Step.Kind != entity.ActionNavigate || !result.Trace[0].Result.Success {
		t.Errorf("unexpected first entry: %+v", result.Trace[0])
	}
	if result.Trace[1].Step.Kind != entity.ActionFinish || !result.Trace[1].Result.Success {
		t.Errorf("unexpected terminal entry: %+v", result.Trace[1])
	}
	if len(browser.actions) != 1 || browser.actions[0] != "navigate:https://example.com" {
		t.Errorf("unexpected driver actions: %v", browser.actions)
	}
}

func TestRunPersistentFailureExhaustsBudget(t *testing.T) {
	browser := &scriptedBrowser{
		elements: pageElements(),
		clickErr: errors.New("element not interactable"),
	}
	llm := &scriptedLLM{
		responses: []string{`{"action": "click", "element_id": "el-0000"}`},
		fallback:  `{"action": "click", "element_id": "el-0000"}`,
	}
	o := newOrchestrator(t, browser, llm, 10, 3)

	result, err := o.Run(context.Background(), entity.NewTask("t1", "press submit"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Succeeded() {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Reason, "retry budget exhausted") {
		t.Errorf("unexpected reason: %q", result.Reason)
	}
	// One decision plus two corrective attempts; the third recovery call
	// trips the budget without reaching the LLM.
	if len(llm.prompts) != 3 {
		t.Errorf("expected 3 LLM calls, got %d", len(llm.prompts))
	}
	if result.Steps != 3 {
		t.Fatalf("expected 3 recorded steps, got %d", result.Steps)
	}
	for i, e := range result.Trace {
		if e.Result.Success {
			t.Errorf("entry %d should be a failure: %+v", i, e)
		}
	}
}

func TestRunUnparsableDecisionChain(t *testing.T) {
	browser := &scriptedBrowser{elements: pageElements()}
	llm := &scriptedLLM{fallback: "I would suggest clicking somewhere."}
	o := newOrchestrator(t, browser, llm, 10, 3)

	result, err := o.Run(context.Background(), entity.NewTask("t1", "anything"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Succeeded() {
		t.Fatal("expected failure")
	}
	// Decision, then two recovery attempts that also fail to parse; the
	// third recovery call exhausts the budget.
	if len(llm.prompts) != 3 {
		t.Errorf("expected exactly 3 LLM calls, got %d", len(llm.prompts))
	}
	if result.Steps != 0 {
		t.Errorf("nothing was executed, expected 0 recorded steps, got %d", result.Steps)
	}
	// The second recovery prompt carries the parse failure as its error
	// detail.
	if !strings.Contains(llm.prompts[2], "invalid instruction") {
		t.Errorf("expected parse error fed back into recovery prompt:\n%s", llm.prompts[2])
	}
}

func TestRunStepLimit(t *testing.T) {
	browser := &scriptedBrowser{elements: pageElements()}
	llm := &scriptedLLM{fallback: `{"action": "click", "element_id": "el-0000"}`}
	o := newOrchestrator(t, browser, llm, 2, 3)

	result, err := o.Run(context.Background(), entity.NewTask("t1", "keep clicking"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Succeeded() {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Reason, "step limit exceeded") {
		t.Errorf("unexpected reason: %q", result.Reason)
	}
	if result.Steps != 2 {
		t.Errorf("expected 2 recorded steps, got %d", result.Steps)
	}
}

func TestRunFailDecisionTerminatesWithoutExecution(t *testing.T) {
	browser := &scriptedBrowser{elements: pageElements()}
	llm := &scriptedLLM{responses: []string{
		`{"action": "fail", "reason": "page requires captcha"}`,
	}}
	o := newOrchestrator(t, browser, llm, 10, 3)

	result, err := o.Run(context.Background(), entity.NewTask("t1", "log in"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Succeeded() {
		t.Fatal("expected failure")
	}
	if result.Reason != "page requires captcha" {
		t.Errorf("unexpected reason: %q", result.Reason)
	}
	if result.Steps != 1 {
		t.Errorf("terminal decision counts as one cycle, got %d", result.Steps)
	}
	if len(browser.actions) != 0 {
		t.Errorf("terminal decision must not reach the driver, got %v", browser.actions)
	}
}

func TestRunCancellation(t *testing.T) {
	browser := &scriptedBrowser{elements: pageElements()}
	llm := &scriptedLLM{fallback: `{"action": "click", "element_id": "el-0000"}`}
	o := newOrchestrator(t, browser, llm, 10, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := o.Run(ctx, entity.NewTask("t1", "anything"))

	var cancelErr *entity.CancelledError
	if !errors.As(err, &cancelErr) {
		t.Fatalf("expected CancelledError, got %v", err)
	}
	if result == nil || result.Succeeded() {
		t.Fatal("cancelled run must still report a failed result")
	}
	if len(llm.prompts) != 0 {
		t.Errorf("no LLM call should happen after cancellation, got %d", len(llm.prompts))
	}
}

func TestRunRecoversFromObservationFailure(t *testing.T) {
	browser := &scriptedBrowser{elements: pageElements(), pageInfoFails: 1}
	llm := &scriptedLLM{responses: []string{
		`{"action": "navigate", "url": "https://example.com"}`,
		`{"action": "finish", "result": "recovered"}`,
	}}
	o := newOrchestrator(t, browser, llm, 10, 3)

	result, err := o.Run(context.Background(), entity.NewTask("t1", "open example.com"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Succeeded() {
		t.Fatalf("expected success, got %s: %s", result.Status, result.Reason)
	}

	// The first LLM call is a recovery prompt describing the observation
	// failure, with no attempted action and no page state to show.
	first := llm.prompts[0]
	for _, want := range []string{"could not observe page", "(no action attempted)", "(page state unavailable)"} {
		if !strings.Contains(first, want) {
			t.Errorf("recovery prompt missing %q:\n%s", want, first)
		}
	}

	if result.Steps != 2 {
		t.Errorf("expected navigate plus finish, got %d steps", result.Steps)
	}
	if result.Trace[0].SnapshotSummary != "(page state unavailable)" {
		t.Errorf("unexpected snapshot summary for recovered step: %q", result.Trace[0].SnapshotSummary)
	}
}

func TestRunSuccessResetsRetryBudget(t *testing.T) {
	// The first two clicks fail, the third works. With a budget of three
	// the run must survive and finish normally.
	browser := &scriptedBrowser{
		elements:   pageElements(),
		clickErr:   errors.New("element not interactable"),
		clickFails: 2,
	}
	llm := &scriptedLLM{responses: []string{
		`{"action": "click", "element_id": "el-0000"}`,
		`{"action": "click", "element_id": "el-0000"}`,
		`{"action": "click", "element_id": "el-0000"}`,
		`{"action": "finish", "result": "done"}`,
	}}
	o := newOrchestrator(t, browser, llm, 10, 3)

	result, err := o.Run(context.Background(), entity.NewTask("t1", "press submit"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Succeeded() {
		t.Fatalf("expected success after recovery, got %s: %s", result.Status, result.Reason)
	}
	// Two failed clicks, one successful click, one finish.
	if result.Steps != 4 {
		t.Errorf("expected 4 recorded steps, got %d", result.Steps)
	}
	if result.Trace[0].Result.Success || result.Trace[1].Result.Success {
		t.Error("first two clicks should be recorded as failures")
	}
	if !result.Trace[2].Result.Success {
		t.Error("third click should be recorded as success")
	}
}
