package voice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/dvloznov/finance-journal/internal/pipeline"
)

// Speech is the model capability the voice channel needs.
type Speech interface {
	// Transcribe converts recorded audio into text.
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)

	// Reply produces the assistant answer to prompt given the earlier turns.
	Reply(ctx context.Context, history []Turn, prompt string) (string, error)

	// Synthesize renders text as WAV audio.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// ErrNoAudio is returned when the speech model answers without audio data.
var ErrNoAudio = errors.New("speech model returned no audio")

// GeminiConfig selects the models used by GeminiSpeech.
type GeminiConfig struct {
	TranscribeModel string
	ReplyModel      string
	SpeechModel     string
	VoiceName       string
}

// GeminiSpeech implements Speech with the Gemini API.
type GeminiSpeech struct {
	client *genai.Client
	cfg    GeminiConfig
}

// NewGeminiSpeech creates a Gemini-backed Speech.
func NewGeminiSpeech(client *genai.Client, cfg GeminiConfig) *GeminiSpeech {
	return &GeminiSpeech{client: client, cfg: cfg}
}

// Transcribe implements Speech.
func (g *GeminiSpeech) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: "Transcribe this audio exactly as spoken. Return only the transcript."},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     audio,
					},
				},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.TranscribeModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Transcribe: generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("Transcribe: empty transcript")
	}
	return text, nil
}

// Reply implements Speech. The insight persona is sent as the system
// instruction.
func (g *GeminiSpeech) Reply(ctx context.Context, history []Turn, prompt string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		role := genai.RoleUser
		if turn.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, genai.Role(role)))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(pipeline.InsightPersona, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.ReplyModel, contents, config)
	if err != nil {
		return "", fmt.Errorf("Reply: generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("Reply: empty response from model")
	}
	return text, nil
}

// Synthesize implements Speech.
func (g *GeminiSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: g.cfg.VoiceName,
				},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.SpeechModel, genai.Text(text), config)
	if err != nil {
		return nil, fmt.Errorf("Synthesize: generate content: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return toWAV(part.InlineData.Data, part.InlineData.MIMEType), nil
			}
		}
	}
	return nil, fmt.Errorf("Synthesize: %w", ErrNoAudio)
}

// detectAudioMIME guesses the container of an uploaded audio frame.
// Browsers usually record audio/webm, which sniffs as video/webm.
func detectAudioMIME(data []byte) string {
	ct := http.DetectContentType(data)
	switch {
	case strings.HasPrefix(ct, "audio/"):
		if i := strings.Index(ct, ";"); i != -1 {
			ct = ct[:i]
		}
		return ct
	case strings.HasPrefix(ct, "video/webm"):
		return "audio/webm"
	case strings.HasPrefix(ct, "application/ogg"):
		return "audio/ogg"
	}
	return "audio/webm"
}
