package rodwrapper

import (
	"strings"

	"golang.org/x/net/html"
)

// TextConfig controls which parts of the DOM contribute to the visible-text
// rendering of a page.
type TextConfig struct {
	TagsToSkip []string
	MaxSize    int
}

var DefaultTextConfig = TextConfig{
	TagsToSkip: []string{
		"script", "style", "noscript", "svg", "iframe",
		"link", "meta", "head", "title", "template",
	},
	MaxSize: 5000,
}

// VisibleText renders the visible text of an HTML document, skipping
// non-content tags and collapsing whitespace. The result is bounded by
// cfg.MaxSize so snapshot summaries have predictable prompt cost.
func VisibleText(rawHTML string, cfg *TextConfig) string {
	if cfg == nil {
		cfg = &DefaultTextConfig
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		// Unparseable markup degrades to a bounded raw cut.
		return truncate(strings.TrimSpace(rawHTML), cfg.MaxSize)
	}

	body := findBodyNode(doc)
	if body == nil {
		body = doc
	}

	var sb strings.Builder
	collectText(body, cfg, &sb)

	return truncate(normalizeWhitespace(sb.String()), cfg.MaxSize)
}

func findBodyNode(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBodyNode(c); b != nil {
			return b
		}
	}
	return nil
}

func collectText(n *html.Node, cfg *TextConfig, sb *strings.Builder) {
	if n.Type == html.CommentNode {
		return
	}
	if n.Type == html.ElementNode && isOneOf(n.Data, cfg.TagsToSkip...) {
		return
	}
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, cfg, sb)
	}
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}

func truncate(s string, maxSize int) string {
	if maxSize > 0 && len(s) > maxSize {
		return s[:maxSize] + "\n... (truncated)"
	}
	return s
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
