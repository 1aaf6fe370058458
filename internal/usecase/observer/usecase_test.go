package observer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"webagent/internal/domain/entity"
	"webagent/internal/infrastructure/logger"
)

type pageMock struct {
	url      string
	title    string
	elements []entity.UIElement
	text     string
	infoErr  error
}

func (p *pageMock) Navigate(ctx context.Context, url string) error        { return nil }
func (p *pageMock) Click(ctx context.Context, selector string) error      { return nil }
func (p *pageMock) Fill(ctx context.Context, selector, text string) error { return nil }
func (p *pageMock) WaitFor(ctx context.Context, condition string) error   { return nil }

func (p *pageMock) PageInfo(ctx context.Context) (string, string, error) {
	if p.infoErr != nil {
		return "", "", p.infoErr
	}
	return p.url, p.title, nil
}

func (p *pageMock) UIElements(ctx context.Context) ([]entity.UIElement, error) {
	return p.elements, nil
}

func (p *pageMock) PageText(ctx context.Context) (string, error) {
	return p.text, nil
}

func (p *pageMock) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	return nil, nil
}

func (p *pageMock) CurrentURL() string { return p.url }
func (p *pageMock) Close()             {}

func TestCaptureSnapshot(t *testing.T) {
	page := &pageMock{
		url:   "https://example.com",
		title: "Example Domain",
		elements: []entity.UIElement{
			{ID: "el-0000", Tag: "a", Label: "More information"},
		},
		text: "Example Domain\nThis domain is for use in examples.",
	}
	obs := New(page, logger.NewNop(), DefaultConfig())

	snapshot, err := obs.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if snapshot.URL != "https://example.com" || snapshot.Title != "Example Domain" {
		t.Errorf("unexpected page info: %s / %s", snapshot.URL, snapshot.Title)
	}
	if len(snapshot.Elements) != 1 {
		t.Errorf("expected 1 element, got %d", len(snapshot.Elements))
	}
	if snapshot.CapturedAt.IsZero() {
		t.Error("expected capture timestamp")
	}
}

func TestCaptureCapsElements(t *testing.T) {
	page := &pageMock{url: "https://example.com"}
	for i := 0; i < 80; i++ {
		page.elements = append(page.elements, entity.UIElement{ID: fmt.Sprintf("el-%04d", i)})
	}
	obs := New(page, logger.NewNop(), Config{MaxElements: 50, MaxTextChars: 5000})

	snapshot, err := obs.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if len(snapshot.Elements) != 50 {
		t.Errorf("expected 50 elements, got %d", len(snapshot.Elements))
	}
	// The cap keeps the head of the list.
	if snapshot.Elements[0].ID != "el-0000" || snapshot.Elements[49].ID != "el-0049" {
		t.Errorf("unexpected elements after cap: %s .. %s", snapshot.Elements[0].ID, snapshot.Elements[49].ID)
	}
}

func TestCaptureTruncatesText(t *testing.T) {
	page := &pageMock{
		url:  "https://example.com",
		text: strings.Repeat("a", 300),
	}
	obs := New(page, logger.NewNop(), Config{MaxElements: 50, MaxTextChars: 100})

	snapshot, err := obs.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if !strings.HasSuffix(snapshot.TextSummary, "... (truncated)") {
		t.Errorf("expected truncation marker, got %q", snapshot.TextSummary)
	}
	if len(snapshot.TextSummary) > 100+len("\n... (truncated)") {
		t.Errorf("text summary exceeds cap: %d chars", len(snapshot.TextSummary))
	}
}

func TestCaptureWrapsDriverError(t *testing.T) {
	page := &pageMock{infoErr: errors.New("target crashed")}
	obs := New(page, logger.NewNop(), DefaultConfig())

	_, err := obs.Capture(context.Background())

	var obsErr *entity.ObservationError
	if !errors.As(err, &obsErr) {
		t.Fatalf("expected ObservationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "could not observe page") {
		t.Errorf("unexpected error text: %v", err)
	}
}
