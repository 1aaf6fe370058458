package decision

import (
	"encoding/json"
	"strings"

	"webagent/internal/domain/entity"
)

type actionWire struct {
	Action           string `json:"action"`
	URL              string `json:"url"`
	ElementID        string `json:"element_id"`
	Text             string `json:"text"`
	Condition        string `json:"condition"`
	CredentialHandle string `json:"credential_handle"`
	Result           string `json:"result"`
	Reason           string `json:"reason"`
}

// ParseActionStep turns a raw LLM response into a validated ActionStep.
// The model may wrap the JSON object in prose; everything outside the
// outermost braces is ignored. Validation after extraction is strict: the
// LLM is untrusted input, not a typed API.
func ParseActionStep(raw string, snapshot *entity.PageSnapshot) (*entity.ActionStep, error) {
	jsonStr, ok := extractJSON(raw)
	if !ok {
		return nil, &entity.DecisionParseError{Raw: raw, Reason: "no JSON object in response"}
	}

	var wire actionWire
	if err := json.Unmarshal([]byte(jsonStr), &wire); err != nil {
		return nil, &entity.DecisionParseError{Raw: raw, Reason: "malformed JSON: " + err.Error()}
	}

	if wire.Action == "" {
		return nil, &entity.DecisionParseError{Raw: raw, Reason: "missing action field"}
	}

	step := &entity.ActionStep{
		Kind:             entity.ActionKind(strings.ToLower(strings.TrimSpace(wire.Action))),
		URL:              wire.URL,
		ElementID:        wire.ElementID,
		Text:             wire.Text,
		Condition:        wire.Condition,
		CredentialHandle: wire.CredentialHandle,
		Result:           wire.Result,
		Reason:           wire.Reason,
	}

	if err := step.ValidateAgainst(snapshot); err != nil {
		return nil, &entity.DecisionParseError{Raw: raw, Reason: err.Error()}
	}

	return step, nil
}

func extractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
