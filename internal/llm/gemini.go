package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// NewGeminiClient creates a Gemini API client. An empty apiKey lets the SDK
// fall back to GEMINI_API_KEY / GOOGLE_API_KEY.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiClient: create genai client: %w", err)
	}
	return client, nil
}

// GeminiBackend generates text with the Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiBackend creates a backend for model using client.
func NewGeminiBackend(client *genai.Client, model string) *GeminiBackend {
	if strings.TrimSpace(model) == "" {
		model = DefaultGeminiModel
	}
	return &GeminiBackend{
		client: client,
		model:  model,
	}
}

// WithSystemInstruction returns a copy of the backend that sends instruction
// as the system prompt on every call.
func (b *GeminiBackend) WithSystemInstruction(instruction string) *GeminiBackend {
	clone := *b
	clone.config = &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
	}
	return &clone
}

// Generate implements Backend.
func (b *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), b.config)
	if err != nil {
		return "", classifyGenAIError(err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		reason := ""
		if len(resp.Candidates) > 0 {
			reason = string(resp.Candidates[0].FinishReason)
		}
		return "", &emptyContentError{FinishReason: reason}
	}
	return text, nil
}

// classifyGenAIError maps SDK API errors onto StatusError so the gateway
// can apply its retry policy.
func classifyGenAIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini: %w", &StatusError{StatusCode: apiErr.Code, Body: apiErr.Message})
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fmt.Errorf("gemini: %w", &StatusError{StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message})
	}
	return fmt.Errorf("gemini: generate content: %w", err)
}
