package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/coachprompt/internal/config"
)

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()
	if registry == nil {
		t.Fatal("NewRegistry should not return nil")
	}

	if names := registry.List(); len(names) != 0 {
		t.Errorf("New registry should be empty, got %d providers: %v", len(names), names)
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	mock := NewMockProvider()
	registry.Register(mock)

	p, ok := registry.Get("mock")
	if !ok {
		t.Fatal("Should find registered provider")
	}
	if p.Name() != "mock" {
		t.Errorf("Expected provider 'mock', got '%s'", p.Name())
	}

	if _, ok := registry.Get("gemini"); ok {
		t.Error("Should not find unregistered provider")
	}
}

func TestRegistrySelect(t *testing.T) {
	registry := NewRegistry()
	registry.Register(NewMockProvider())

	tests := []struct {
		name    string
		wantErr bool
	}{
		{"mock", false},
		{"gemini", true},
		{"none", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := registry.Select(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrNotConfigured) {
					t.Errorf("Select(%q) error = %v, want ErrNotConfigured", tt.name, err)
				}
				return
			}
			if err != nil || p == nil {
				t.Fatalf("Select(%q) failed: %v", tt.name, err)
			}
		})
	}
}

func TestSetup(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()

	registry := Setup(ctx, config.LLMConfig{Provider: config.LLMGemini}, log)
	if names := registry.List(); len(names) != 0 {
		t.Errorf("No keys should register nothing, got %v", names)
	}

	registry = Setup(ctx, config.LLMConfig{
		Provider:        config.LLMAnthropic,
		Model:           "claude-sonnet",
		OpenAIAPIKey:    "sk-test",
		AnthropicAPIKey: "sk-ant-test",
	}, log)
	names := registry.List()
	if len(names) != 2 || names[0] != "anthropic" || names[1] != "openai" {
		t.Fatalf("Expected [anthropic openai], got %v", names)
	}

	p, _ := registry.Get("anthropic")
	if p.ModelID() != "claude-sonnet-4-20250514" {
		t.Errorf("Selected provider should use LLM_MODEL alias, got %q", p.ModelID())
	}
	p, _ = registry.Get("openai")
	if p.ModelID() != "gpt-4o-mini" {
		t.Errorf("Other providers keep their default model, got %q", p.ModelID())
	}

	registry = Setup(ctx, config.LLMConfig{Provider: config.LLMMock}, log)
	mock, err := registry.Select(config.LLMMock)
	if err != nil {
		t.Fatalf("mock should be registered: %v", err)
	}
	resp, err := mock.Generate(ctx, Request{Prompt: "hi"})
	if err != nil || resp.Text == "" {
		t.Errorf("mock provider should answer by default, got %v %v", resp, err)
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		input    string
		models   map[string]string
		fallback string
		expected string
	}{
		{"gemini-flash", geminiModels, "gemini-flash", "gemini-2.0-flash"},
		{"", geminiModels, "gemini-flash", "gemini-2.0-flash"},
		{"gemini-1.5-flash", geminiModels, "gemini-flash", "gemini-1.5-flash"},
		{"", openaiModels, "gpt-4o-mini", "gpt-4o-mini"},
		{"claude-haiku", anthropicModels, "claude-haiku", "claude-haiku-4-5-20251001"},
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, tt.models, tt.fallback)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
