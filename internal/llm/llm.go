// Package llm sends quiz prompts to a hosted model and returns its raw reply.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"

	DefaultModel = "llama-3.3-70b-versatile"
)

var (
	ErrUpstream     = errors.New("model provider request failed")
	ErrNoAPIKey     = errors.New("no API key configured for model provider")
	ErrUnknownModel = errors.New("unknown model")
	ErrEmptyReply   = errors.New("model returned no content")
)

// UpstreamError wraps any failure talking to a provider.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstream, e.Err}
}

// Request is one chat completion. APIKey, when set, replaces the key the
// server was configured with.
type Request struct {
	System string
	User   string
	Model  string
	APIKey string
}

// Generator returns the model's raw text reply for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Model is a selectable model.
type Model struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
}

// Models lists every model offered, default first.
var Models = []Model{
	{ID: "llama-3.3-70b-versatile", Provider: ProviderGroq},
	{ID: "llama3-70b-8192", Provider: ProviderGroq},
	{ID: "mixtral-8x7b-32768", Provider: ProviderGroq},
	{ID: "gemini-2.0-flash", Provider: ProviderGemini},
}

// Registry routes a request to the generator of its model's provider.
type Registry struct {
	generators   map[string]Generator
	defaultModel string
	timeout      time.Duration
}

// NewRegistry returns an empty registry. An empty defaultModel means
// DefaultModel; a zero timeout means none.
func NewRegistry(defaultModel string, timeout time.Duration) *Registry {
	if defaultModel == "" {
		defaultModel = DefaultModel
	}
	return &Registry{
		generators:   make(map[string]Generator),
		defaultModel: defaultModel,
		timeout:      timeout,
	}
}

func (r *Registry) Register(provider string, g Generator) {
	r.generators[provider] = g
}

// DefaultModel is the model used when a request names none.
func (r *Registry) DefaultModel() string {
	return r.defaultModel
}

// Models lists the models whose provider has a generator.
func (r *Registry) Models() []Model {
	var out []Model
	for _, m := range Models {
		if _, ok := r.generators[m.Provider]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Resolve maps a model name to its generator. Empty means the default model.
func (r *Registry) Resolve(model string) (string, Generator, error) {
	if model == "" {
		model = r.defaultModel
	}
	for _, m := range Models {
		if m.ID != model {
			continue
		}
		g, ok := r.generators[m.Provider]
		if !ok {
			break
		}
		return model, g, nil
	}
	return "", nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
}

// Generate makes exactly one call to the provider of req.Model.
func (r *Registry) Generate(ctx context.Context, req Request) (string, error) {
	model, g, err := r.Resolve(req.Model)
	if err != nil {
		return "", err
	}
	req.Model = model
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return g.Generate(ctx, req)
}
