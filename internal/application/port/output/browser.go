package output

import (
	"context"

	"webagent/internal/domain/entity"
)

type BrowserPort interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, text string) error
	WaitFor(ctx context.Context, condition string) error

	PageInfo(ctx context.Context) (url, title string, err error)
	UIElements(ctx context.Context) ([]entity.UIElement, error)
	PageText(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) (*entity.Screenshot, error)

	CurrentURL() string
	Close()
}
