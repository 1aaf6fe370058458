package service

import (
	"fmt"
	"strings"

	"webagent/internal/domain/entity"
)

// ContextMemory is the append-only record of completed cycles for one run.
// It is owned exclusively by a single orchestrator instance and discarded
// at run end; entries are never reordered or deleted.
type ContextMemory struct {
	entries []entity.ContextEntry
}

func NewContextMemory() *ContextMemory {
	return &ContextMemory{}
}

func (m *ContextMemory) Append(entry entity.ContextEntry) {
	m.entries = append(m.entries, entry)
}

func (m *ContextMemory) Len() int {
	return len(m.entries)
}

func (m *ContextMemory) Entries() []entity.ContextEntry {
	result := make([]entity.ContextEntry, len(m.entries))
	copy(result, m.entries)
	return result
}

// Summarize renders a bounded numbered history for prompt construction.
// The most recent maxEntries entries keep their detail; older entries
// compress to one line each. The rendering never exceeds maxChars.
func (m *ContextMemory) Summarize(maxEntries, maxChars int) string {
	if len(m.entries) == 0 {
		return "(no actions taken yet)"
	}

	verbatimFrom := len(m.entries) - maxEntries
	if verbatimFrom < 0 {
		verbatimFrom = 0
	}

	var sb strings.Builder
	for i, e := range m.entries {
		if i < verbatimFrom {
			fmt.Fprintf(&sb, "%d. %s -> %s\n", i+1, e.Step.Describe(), shortOutcome(e.Result))
			continue
		}
		fmt.Fprintf(&sb, "%d. on %s: %s -> %s\n",
			i+1, e.SnapshotSummary, e.Step.Describe(), fullOutcome(e.Result))
	}

	out := sb.String()
	if len(out) > maxChars {
		out = out[len(out)-maxChars:]
		// Drop the partial first line left by the cut.
		if idx := strings.IndexByte(out, '\n'); idx >= 0 && idx+1 < len(out) {
			out = out[idx+1:]
		}
		out = "(earlier history omitted)\n" + out
	}
	return out
}

func shortOutcome(r entity.ExecutionResult) string {
	if r.Success {
		return "ok"
	}
	return "failed"
}

func fullOutcome(r entity.ExecutionResult) string {
	if r.Success {
		if r.Value != "" {
			return "ok: " + r.Value
		}
		return "ok"
	}
	return "failed: " + r.ErrorDetail
}
