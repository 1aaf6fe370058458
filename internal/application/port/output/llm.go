package output

import "context"

// LLMPort is the single call the core makes against the LLM service.
// Implementations map transport, auth and rate-limit failures to
// entity.LLMServiceError.
type LLMPort interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
