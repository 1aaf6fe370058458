package observer

import (
	"context"
	"strings"
	"time"

	"webagent/internal/application/port/output"
	"webagent/internal/domain/entity"
)

const (
	defaultMaxElements  = 50
	defaultMaxTextChars = 5000
)

// Observer captures bounded page snapshots. The caps are a contract, not an
// optimization: prompts built from a snapshot must have predictable size.
type Observer struct {
	browser      output.BrowserPort
	logger       output.LoggerPort
	maxElements  int
	maxTextChars int
}

type Config struct {
	MaxElements  int
	MaxTextChars int
}

func DefaultConfig() Config {
	return Config{
		MaxElements:  defaultMaxElements,
		MaxTextChars: defaultMaxTextChars,
	}
}

func New(browser output.BrowserPort, logger output.LoggerPort, cfg Config) *Observer {
	if cfg.MaxElements <= 0 {
		cfg.MaxElements = defaultMaxElements
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = defaultMaxTextChars
	}
	return &Observer{
		browser:      browser,
		logger:       logger,
		maxElements:  cfg.MaxElements,
		maxTextChars: cfg.MaxTextChars,
	}
}

// Capture reads the current page state. Read-only; the snapshot is
// immutable once returned.
func (o *Observer) Capture(ctx context.Context) (*entity.PageSnapshot, error) {
	url, title, err := o.browser.PageInfo(ctx)
	if err != nil {
		return nil, &entity.ObservationError{Cause: err}
	}

	elements, err := o.browser.UIElements(ctx)
	if err != nil {
		return nil, &entity.ObservationError{Cause: err}
	}
	if len(elements) > o.maxElements {
		elements = elements[:o.maxElements]
	}

	text, err := o.browser.PageText(ctx)
	if err != nil {
		return nil, &entity.ObservationError{Cause: err}
	}
	text = strings.TrimSpace(text)
	if len(text) > o.maxTextChars {
		text = text[:o.maxTextChars] + "\n... (truncated)"
	}

	snapshot := &entity.PageSnapshot{
		URL:         url,
		Title:       title,
		Elements:    elements,
		TextSummary: text,
		CapturedAt:  time.Now(),
	}

	o.logger.Debug("Page observed", "url", url, "elements", len(elements), "textLen", len(text))
	return snapshot, nil
}
