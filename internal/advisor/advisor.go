// Package advisor wraps the remote LLM advisory provider: a thin Gemini
// HTTP client, a typed error taxonomy for its failure modes, and bounded
// exponential-backoff retry for the rate-limit case.
package advisor

import "context"

// ThinkingLevel selects how much reasoning effort the provider spends on a
// request.
type ThinkingLevel string

const (
	ThinkingLow  ThinkingLevel = "LOW"
	ThinkingHigh ThinkingLevel = "HIGH"
)

// GenerateOptions carries optional per-call provider settings.
type GenerateOptions struct {
	// ResponseSchema, when set, asks the provider for schema-constrained JSON
	// output instead of free text.
	ResponseSchema map[string]any
	ThinkingLevel  ThinkingLevel
}

// RemoteAdvisor is one remote text/structured generation call. Implementations
// may reject with a *Error; anything else is treated as unclassified and only
// the "429" message substring marks it retryable.
type RemoteAdvisor interface {
	Generate(ctx context.Context, systemInstruction, userContent string, opts *GenerateOptions) (string, error)
}
