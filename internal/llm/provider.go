package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/dvloznov/finance-journal/internal/config"
)

// ErrNoAPIKey is returned when the selected provider has no API key.
var ErrNoAPIKey = errors.New("llm api key is not configured")

// Provider is the configured model backend behind a retrying Gateway.
type Provider struct {
	Name    string
	Model   string
	Gateway *Gateway

	// Gemini is the shared SDK client when the Gemini provider is selected,
	// nil otherwise. The voice channel reuses it.
	Gemini *genai.Client
}

// NewProvider builds the backend selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.LLM) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("NewProvider: %s: %w", cfg.Provider, ErrNoAPIKey)
	}

	opts := []Option{
		WithMaxRetries(cfg.MaxRetries),
		WithAttemptTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
	}

	p := &Provider{Name: cfg.Provider, Model: cfg.Model}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		backend := NewOpenAIBackend(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}, nil)
		p.Gateway = NewGateway(backend, opts...)
	case config.ProviderGemini, "":
		client, err := NewGeminiClient(ctx, cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("NewProvider: %w", err)
		}
		p.Name = config.ProviderGemini
		p.Gemini = client
		p.Gateway = NewGateway(NewGeminiBackend(client, cfg.Model), opts...)
	default:
		return nil, fmt.Errorf("NewProvider: unknown provider %q", cfg.Provider)
	}

	return p, nil
}
