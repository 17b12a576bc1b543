package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/finance-journal/internal/config"
)

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := NewProvider(ctx, config.LLM{Provider: config.ProviderGemini})
		if !errors.Is(err, ErrNoAPIKey) {
			t.Fatalf("expected ErrNoAPIKey, got %v", err)
		}
	})

	t.Run("openai", func(t *testing.T) {
		p, err := NewProvider(ctx, config.LLM{
			Provider:       config.ProviderOpenAI,
			APIKey:         "sk-test",
			Model:          "gpt-4o",
			MaxRetries:     1,
			TimeoutSeconds: 5,
		})
		if err != nil {
			t.Fatalf("NewProvider: %v", err)
		}
		if p.Gateway == nil || p.Gemini != nil || p.Name != config.ProviderOpenAI {
			t.Errorf("unexpected provider %+v", p)
		}
		if p.Gateway.maxRetries != 1 {
			t.Errorf("expected 1 retry, got %d", p.Gateway.maxRetries)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := NewProvider(ctx, config.LLM{Provider: "llama", APIKey: "k"}); err == nil {
			t.Fatal("expected error")
		}
	})
}
