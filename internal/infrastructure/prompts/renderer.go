package prompts

import (
	"bytes"
	"fmt"
	"text/template"
)

type DecisionData struct {
	Goal     string
	History  string
	Snapshot string
}

type RecoveryData struct {
	Goal         string
	History      string
	FailedAction string
	ErrorDetail  string
	Snapshot     string
}

// Renderer produces the deterministic prompts the engines send to the LLM.
// Templates are parsed once at construction.
type Renderer struct {
	decision *template.Template
	recovery *template.Template
}

func NewRenderer() (*Renderer, error) {
	decision, err := template.New("decision").Parse(DecisionTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse decision template: %w", err)
	}

	recovery, err := template.New("recovery").Parse(RecoveryTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse recovery template: %w", err)
	}

	return &Renderer{decision: decision, recovery: recovery}, nil
}

func (r *Renderer) Decision(data DecisionData) (string, error) {
	var buf bytes.Buffer
	if err := r.decision.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render decision prompt: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) Recovery(data RecoveryData) (string, error) {
	var buf bytes.Buffer
	if err := r.recovery.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render recovery prompt: %w", err)
	}
	return buf.String(), nil
}
