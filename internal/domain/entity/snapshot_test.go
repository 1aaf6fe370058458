package entity

import (
	"strings"
	"testing"
)

func TestElementLookup(t *testing.T) {
	s := &PageSnapshot{
		Elements: []UIElement{
			{ID: "el-0000", Tag: "button", Selector: "#submit"},
			{ID: "el-0001", Tag: "input", Selector: "#q"},
		},
	}

	el, ok := s.Element("el-0001")
	if !ok || el.Selector != "#q" {
		t.Errorf("unexpected lookup result: %+v, %v", el, ok)
	}

	if _, ok := s.Element("el-0099"); ok {
		t.Error("expected miss for unknown id")
	}
	if s.HasElement("el-0099") {
		t.Error("HasElement should report miss")
	}
}

func TestElementLookupOnNilSnapshot(t *testing.T) {
	var s *PageSnapshot

	if _, ok := s.Element("el-0000"); ok {
		t.Error("nil snapshot has no elements")
	}
	if s.HasElement("el-0000") {
		t.Error("nil snapshot has no elements")
	}
}

func TestDescribeListsElements(t *testing.T) {
	s := &PageSnapshot{
		URL:   "https://example.com",
		Title: "Example Domain",
		Elements: []UIElement{
			{ID: "el-0000", Tag: "button", Label: "Submit"},
			{ID: "el-0001", Tag: "input", Role: "text", Label: "Search"},
		},
		TextSummary: "Example Domain\nThis domain is for use in examples.",
	}

	got := s.Describe()
	for _, want := range []string{
		"URL: https://example.com",
		"Title: Example Domain",
		"[el-0000] <button> \"Submit\"",
		"[el-0001] <input> role=text \"Search\"",
		"Visible text:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Describe missing %q:\n%s", want, got)
		}
	}
}

func TestDescribeEmptyPage(t *testing.T) {
	s := &PageSnapshot{URL: "about:blank"}

	got := s.Describe()
	if !strings.Contains(got, "Interactive elements: none") {
		t.Errorf("expected empty-elements marker, got:\n%s", got)
	}
}

func TestSummary(t *testing.T) {
	s := &PageSnapshot{
		URL:      "https://example.com",
		Elements: []UIElement{{ID: "el-0000"}, {ID: "el-0001"}},
	}

	if got := s.Summary(); got != "https://example.com (2 elements)" {
		t.Errorf("unexpected summary: %q", got)
	}
}
