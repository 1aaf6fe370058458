package entity

import "fmt"

type ActionKind string

const (
	ActionNavigate   ActionKind = "navigate"
	ActionClick      ActionKind = "click"
	ActionType       ActionKind = "type"
	ActionWait       ActionKind = "wait"
	ActionScreenshot ActionKind = "screenshot"
	ActionLogin      ActionKind = "login"
	ActionFinish     ActionKind = "finish"
	ActionFail       ActionKind = "fail"
)

func (k ActionKind) String() string {
	return string(k)
}

func (k ActionKind) IsValid() bool {
	switch k {
	case ActionNavigate, ActionClick, ActionType, ActionWait,
		ActionScreenshot, ActionLogin, ActionFinish, ActionFail:
		return true
	}
	return false
}

// ActionStep is one validated browser instruction or terminal signal.
// Only the fields relevant to the kind are set.
type ActionStep struct {
	Kind             ActionKind
	URL              string // navigate
	ElementID        string // click, type
	Text             string // type
	Condition        string // wait: CSS selector or "idle"
	CredentialHandle string // login
	Result           string // finish
	Reason           string // fail
}

// IsTerminal reports whether the step ends the run without execution.
func (a *ActionStep) IsTerminal() bool {
	return a.Kind == ActionFinish || a.Kind == ActionFail
}

// ValidateAgainst checks required fields and that any referenced element
// exists in the snapshot current at decision time. A step that fails this
// check must never reach the driver.
func (a *ActionStep) ValidateAgainst(snapshot *PageSnapshot) error {
	if !a.Kind.IsValid() {
		return fmt.Errorf("unknown action %q", a.Kind)
	}

	switch a.Kind {
	case ActionNavigate:
		if a.URL == "" {
			return fmt.Errorf("navigate requires url")
		}
	case ActionClick:
		if a.ElementID == "" {
			return fmt.Errorf("click requires element_id")
		}
		if snapshot == nil || !snapshot.HasElement(a.ElementID) {
			return fmt.Errorf("element %q not present on page", a.ElementID)
		}
	case ActionType:
		if a.ElementID == "" {
			return fmt.Errorf("type requires element_id")
		}
		if a.Text == "" {
			return fmt.Errorf("type requires text")
		}
		if snapshot == nil || !snapshot.HasElement(a.ElementID) {
			return fmt.Errorf("element %q not present on page", a.ElementID)
		}
	case ActionWait:
		if a.Condition == "" {
			return fmt.Errorf("wait requires condition")
		}
	case ActionLogin:
		if a.CredentialHandle == "" {
			return fmt.Errorf("login requires credential_handle")
		}
	case ActionFail:
		if a.Reason == "" {
			return fmt.Errorf("fail requires reason")
		}
	}
	return nil
}

// Describe is the short human-readable form used in history and logs.
func (a *ActionStep) Describe() string {
	switch a.Kind {
	case ActionNavigate:
		return fmt.Sprintf("navigate(%s)", a.URL)
	case ActionClick:
		return fmt.Sprintf("click(%s)", a.ElementID)
	case ActionType:
		return fmt.Sprintf("type(%s, %q)", a.ElementID, a.Text)
	case ActionWait:
		return fmt.Sprintf("wait(%s)", a.Condition)
	case ActionScreenshot:
		return "screenshot()"
	case ActionLogin:
		return fmt.Sprintf("login(%s)", a.CredentialHandle)
	case ActionFinish:
		return fmt.Sprintf("finish(%q)", a.Result)
	case ActionFail:
		return fmt.Sprintf("fail(%q)", a.Reason)
	}
	return string(a.Kind)
}
