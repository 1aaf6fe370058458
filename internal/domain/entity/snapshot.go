package entity

import (
	"fmt"
	"strings"
	"time"
)

type UIElement struct {
	ID       string
	Tag      string
	Role     string
	Label    string
	Visible  bool
	Selector string
}

// PageSnapshot is an immutable observation of the page. A new snapshot
// supersedes the previous one; snapshots are never mutated in place.
type PageSnapshot struct {
	URL         string
	Title       string
	Elements    []UIElement
	TextSummary string
	CapturedAt  time.Time
}

func (s *PageSnapshot) Element(id string) (UIElement, bool) {
	if s == nil {
		return UIElement{}, false
	}
	for _, el := range s.Elements {
		if el.ID == id {
			return el, true
		}
	}
	return UIElement{}, false
}

func (s *PageSnapshot) HasElement(id string) bool {
	_, ok := s.Element(id)
	return ok
}

// Describe renders the snapshot for prompt construction.
func (s *PageSnapshot) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "URL: %s\n", s.URL)
	if s.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", s.Title)
	}
	if len(s.Elements) == 0 {
		sb.WriteString("Interactive elements: none\n")
	} else {
		sb.WriteString("Interactive elements:\n")
		for _, el := range s.Elements {
			fmt.Fprintf(&sb, "  [%s] <%s>", el.ID, el.Tag)
			if el.Role != "" {
				fmt.Fprintf(&sb, " role=%s", el.Role)
			}
			if el.Label != "" {
				fmt.Fprintf(&sb, " %q", el.Label)
			}
			sb.WriteString("\n")
		}
	}
	if s.TextSummary != "" {
		fmt.Fprintf(&sb, "Visible text:\n%s\n", s.TextSummary)
	}
	return sb.String()
}

// Summary is the one-line form stored in context entries.
func (s *PageSnapshot) Summary() string {
	return fmt.Sprintf("%s (%d elements)", s.URL, len(s.Elements))
}
