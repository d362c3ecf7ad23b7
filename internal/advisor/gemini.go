package advisor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiModel completes prompts through the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel creates a backend. An empty baseURL uses the public endpoint.
func NewGeminiModel(ctx context.Context, apiKey, model, baseURL string, timeout time.Duration) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, geminiClientConfig(apiKey, baseURL, timeout))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiModel{client: client, model: model}, nil
}

func geminiClientConfig(apiKey, baseURL string, timeout time.Duration) *genai.ClientConfig {
	return &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	}
}

func (m *GeminiModel) Name() string { return m.model }

func (m *GeminiModel) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return resp.Text(), nil
}
