package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiTemperature = 0.5

// GeminiClient wraps the Gemini client
type GeminiClient struct {
	apiKey string
	client *genai.Client
}

// NewGeminiClient creates the shared client when apiKey is set. Without a
// key every request must bring its own.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	g := &GeminiClient{apiKey: apiKey}
	if apiKey == "" {
		return g, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

// Close closes the Gemini client
func (g *GeminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	client := g.client
	if req.APIKey != "" && req.APIKey != g.apiKey {
		c, err := genai.NewClient(ctx, option.WithAPIKey(req.APIKey))
		if err != nil {
			return "", &UpstreamError{Provider: ProviderGemini, Err: err}
		}
		defer c.Close()
		client = c
	}
	if client == nil {
		return "", ErrNoAPIKey
	}

	model := client.GenerativeModel(req.Model)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(geminiTemperature)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return "", &UpstreamError{Provider: ProviderGemini, Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &UpstreamError{Provider: ProviderGemini, Err: ErrEmptyReply}
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", &UpstreamError{Provider: ProviderGemini, Err: ErrEmptyReply}
	}
	return text.String(), nil
}
