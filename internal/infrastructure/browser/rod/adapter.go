package rod

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"webagent/internal/application/port/output"
	"webagent/internal/domain/entity"
	"webagent/internal/infrastructure/browser/rodwrapper"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

// BrowserAdapter owns one browser page for one run. Not safe for use by
// concurrent runs.
type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	textCfg  rodwrapper.TextConfig
}

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
	DevTools   bool
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   true,
		SlowMotion: 500 * time.Millisecond,
		Timeout:    10 * time.Second,
		NoSandbox:  true,
		DevTools:   false,
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain").
		Set("disable-blink-features", "AutomationControlled")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(url).
		SlowMotion(cfg.SlowMotion).
		MustConnect()

	page := browser.MustPage("about:blank")

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
		textCfg:  rodwrapper.DefaultTextConfig,
	}, nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string) error {
	if err := b.page.Context(ctx).Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := b.page.Context(ctx).WaitLoad(); err != nil {
		return fmt.Errorf("page load failed: %w", err)
	}
	b.page.WaitIdle(5 * time.Second)
	return nil
}

func (b *BrowserAdapter) Click(ctx context.Context, selector string) error {
	el, err := b.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}

	b.page.WaitIdle(2 * time.Second)
	return nil
}

func (b *BrowserAdapter) Fill(ctx context.Context, selector, text string) error {
	el, err := b.element(ctx, selector)
	if err != nil {
		return fmt.Errorf("field not found: %s: %w", selector, err)
	}

	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}

	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}

	return nil
}

// WaitFor blocks until the condition holds: "idle" waits for network idle,
// anything else is a selector to appear.
func (b *BrowserAdapter) WaitFor(ctx context.Context, condition string) error {
	if strings.EqualFold(strings.TrimSpace(condition), "idle") {
		b.page.Context(ctx).WaitIdle(b.timeout)
		return nil
	}

	if _, err := b.element(ctx, condition); err != nil {
		return fmt.Errorf("wait for %q: %w", condition, err)
	}
	return nil
}

func (b *BrowserAdapter) PageInfo(ctx context.Context) (string, string, error) {
	info, err := b.page.Context(ctx).Info()
	if err != nil {
		return "", "", fmt.Errorf("page info failed: %w", err)
	}
	return info.URL, info.Title, nil
}

func (b *BrowserAdapter) PageText(ctx context.Context) (string, error) {
	body, err := b.page.Context(ctx).Timeout(b.timeout).Element("body")
	if err != nil {
		return "", fmt.Errorf("body not found: %w", err)
	}

	html, err := body.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}

	return rodwrapper.VisibleText(html, &b.textCfg), nil
}

// UIElements lists visible interactive elements with stable per-snapshot
// ids. The id is positional; it stays valid only for the snapshot it was
// captured in.
func (b *BrowserAdapter) UIElements(ctx context.Context) ([]entity.UIElement, error) {
	var result []entity.UIElement
	seen := make(map[string]bool)
	counter := 0

	add := func(el *rod.Element, tag string) {
		if el == nil {
			return
		}

		visible, err := el.Visible()
		if err != nil || !visible {
			return
		}

		selector, err := el.GetXPath(true)
		if err != nil || selector == "" {
			return
		}
		if seen[selector] {
			return
		}
		seen[selector] = true

		text, _ := el.Text()
		text = strings.TrimSpace(text)
		aria, _ := el.Attribute("aria-label")
		role, _ := el.Attribute("role")
		placeholder, _ := el.Attribute("placeholder")
		inputType, _ := el.Attribute("type")

		label := firstNonEmpty(text, ptrToString(aria), ptrToString(placeholder))
		elRole := ptrToString(role)
		if tag == "input" && elRole == "" {
			elRole = ptrToString(inputType)
		}

		result = append(result, entity.UIElement{
			ID:       fmt.Sprintf("el-%04d", counter),
			Tag:      tag,
			Role:     elRole,
			Label:    label,
			Visible:  true,
			Selector: selector,
		})
		counter++
	}

	page := b.page.Context(ctx)

	elements, err := page.Elements("button, [role='button'], [onclick]")
	if err == nil {
		for _, el := range elements {
			add(el, "button")
		}
	}

	elements, err = page.Elements("input, textarea, select")
	if err == nil {
		for _, el := range elements {
			add(el, "input")
		}
	}

	elements, err = page.Elements("a[href]")
	if err == nil {
		for _, el := range elements {
			add(el, "a")
		}
	}

	return result, nil
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	imgBytes, err := b.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > 1024 {
		img = imaging.Resize(img, 1024, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	return b.page.MustInfo().URL
}

func (b *BrowserAdapter) Close() {
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

func (b *BrowserAdapter) element(ctx context.Context, selector string) (*rod.Element, error) {
	page := b.page.Context(ctx).Timeout(b.timeout)
	if strings.HasPrefix(selector, "/") || strings.HasPrefix(selector, "(") {
		return page.ElementX(selector)
	}
	return page.Element(selector)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func ptrToString(s *string) string {
	if s != nil {
		return *s
	}
	return ""
}
