package llm

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	GroqBaseURL     = "https://api.groq.com/openai/v1"
	groqTemperature = 0.5
)

// GroqClient talks to Groq's OpenAI-compatible chat completions endpoint.
type GroqClient struct {
	apiKey  string
	baseURL string
	client  *openai.Client
}

// NewGroqClient returns a client for baseURL, GroqBaseURL when empty. apiKey
// may be empty if every request carries its own key.
func NewGroqClient(apiKey, baseURL string) *GroqClient {
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	g := &GroqClient{apiKey: apiKey, baseURL: baseURL}
	if apiKey != "" {
		g.client = g.newClient(apiKey)
	}
	return g
}

func (g *GroqClient) newClient(key string) *openai.Client {
	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = g.baseURL
	return openai.NewClientWithConfig(cfg)
}

func (g *GroqClient) Generate(ctx context.Context, req Request) (string, error) {
	client := g.client
	if req.APIKey != "" && req.APIKey != g.apiKey {
		client = g.newClient(req.APIKey)
	}
	if client == nil {
		return "", ErrNoAPIKey
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: groqTemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", &UpstreamError{Provider: ProviderGroq, Err: err}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &UpstreamError{Provider: ProviderGroq, Err: ErrEmptyReply}
	}
	return resp.Choices[0].Message.Content, nil
}
