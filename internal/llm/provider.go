// Package llm is the generative text backend. Each Provider wraps one
// vendor SDK behind a single-turn Generate call.
package llm

import "context"

// Provider completes one prompt.
type Provider interface {
	// Name is the registry key ("gemini", "openai", "anthropic", "mock").
	Name() string

	// Generate sends the prompt and returns the completion text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request is a single-turn completion request.
type Request struct {
	// System sets the model's role and constraints. Optional.
	System string

	// Prompt is the user message.
	Prompt string

	// MaxTokens caps the completion. Zero uses DefaultMaxTokens.
	MaxTokens int

	// Temperature controls randomness. Zero leaves the vendor default.
	Temperature float64
}

// Response holds the model output.
type Response struct {
	Text  string
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string

	Usage Usage
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// DefaultMaxTokens applies when a Request leaves MaxTokens unset.
const DefaultMaxTokens = 1024

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return DefaultMaxTokens
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through so full model IDs work too.
func resolveModel(name string, models map[string]string, fallback string) string {
	if name == "" {
		name = fallback
	}
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
