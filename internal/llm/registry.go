package llm

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/coachprompt/internal/config"
)

// Registry manages the configured generative providers, keyed by Name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry
func (r *Registry) Register(provider Provider) {
	r.providers[provider.Name()] = provider
}

// Get retrieves a provider by name
func (r *Registry) Get(name string) (Provider, bool) {
	provider, exists := r.providers[name]
	return provider, exists
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Select returns the named provider, or ErrNotConfigured when it is
// "none" or was not registered.
func (r *Registry) Select(name string) (Provider, error) {
	if name == "" || name == config.LLMNone {
		return nil, ErrNotConfigured
	}
	p, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", name, ErrNotConfigured)
	}
	return p, nil
}

// Setup creates a registry with every provider that has credentials. A
// provider that fails to initialize is logged and skipped.
func Setup(ctx context.Context, cfg config.LLMConfig, log zerolog.Logger) *Registry {
	registry := NewRegistry()

	// the model override only applies to the selected provider
	model := func(name string) string {
		if cfg.Provider == name {
			return cfg.Model
		}
		return ""
	}

	if cfg.GeminiAPIKey != "" {
		p, err := NewGeminiProvider(ctx, GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: model(config.LLMGemini)})
		if err != nil {
			log.Warn().Err(err).Str("provider", config.LLMGemini).Msg("skipping provider")
		} else {
			registry.Register(p)
		}
	}

	if cfg.OpenAIAPIKey != "" {
		p, err := NewOpenAIProvider(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   model(config.LLMOpenAI),
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			log.Warn().Err(err).Str("provider", config.LLMOpenAI).Msg("skipping provider")
		} else {
			registry.Register(p)
		}
	}

	if cfg.AnthropicAPIKey != "" {
		p, err := NewAnthropicProvider(AnthropicConfig{APIKey: cfg.AnthropicAPIKey, Model: model(config.LLMAnthropic)})
		if err != nil {
			log.Warn().Err(err).Str("provider", config.LLMAnthropic).Msg("skipping provider")
		} else {
			registry.Register(p)
		}
	}

	if cfg.Provider == config.LLMMock {
		mock := NewMockProvider()
		mock.Default = &MockResponse{Text: mockText}
		registry.Register(mock)
	}

	return registry
}

const mockText = "Mock coaching response. Set LLM_PROVIDER and an API key for generated answers."
