// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultModel is the model used when no override is provided.
	DefaultModel = "gpt-3.5-turbo-instruct"

	// DefaultAPIKeyEnv is the environment variable holding the API key.
	DefaultAPIKeyEnv = "OPENAI_API_KEY"
)

// OpenAIProvider implements Completer against the OpenAI Completions endpoint.
// SDK-level retries are disabled; callers own the retry policy.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// Compile-time check that OpenAIProvider satisfies the Completer interface.
var _ Completer = (*OpenAIProvider)(nil)

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	apiKey     string
	apiKeyEnv  string
	model      string
	baseURL    string
	httpClient *http.Client
}

// WithAPIKey sets the API key. If not provided, the provider reads it from
// the environment.
func WithAPIKey(key string) OpenAIOption {
	return func(c *openAIConfig) {
		c.apiKey = key
	}
}

// WithAPIKeyEnv changes the environment variable the API key is read from.
func WithAPIKeyEnv(name string) OpenAIOption {
	return func(c *openAIConfig) {
		if name != "" {
			c.apiKeyEnv = name
		}
	}
}

// WithModel overrides the default model for all requests.
func WithModel(model string) OpenAIOption {
	return func(c *openAIConfig) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the provider at an OpenAI-compatible endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *openAIConfig) {
		c.httpClient = hc
	}
}

// NewOpenAIProvider creates a new OpenAI provider.
// It returns an error if no API key is available (neither via option nor env).
func NewOpenAIProvider(opts ...OpenAIOption) (*OpenAIProvider, error) {
	cfg := openAIConfig{
		apiKeyEnv: DefaultAPIKeyEnv,
		model:     DefaultModel,
	}
	for _, o := range opts {
		o(&cfg)
	}

	apiKey := cfg.apiKey
	if apiKey == "" {
		apiKey = os.Getenv(cfg.apiKeyEnv)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("llm: %s not set and no API key provided", cfg.apiKeyEnv)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		base := cfg.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		clientOpts = append(clientOpts, option.WithBaseURL(base))
	}
	if cfg.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(cfg.httpClient))
	}

	return &OpenAIProvider{
		client: openai.NewClient(clientOpts...),
		model:  cfg.model,
	}, nil
}

// Complete sends one batched request to the Completions endpoint.
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if len(req.Prompts) == 0 {
		return nil, errors.New("openai: completion requires at least one prompt")
	}
	if err := req.Params.Validate(); err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	params := openai.CompletionNewParams{
		Model: openai.CompletionNewParamsModel(model),
		Prompt: openai.CompletionNewParamsPromptUnion{
			OfArrayOfStrings: req.Prompts,
		},
		MaxTokens: openai.Int(int64(req.MaxTokens)),
	}
	if req.Params.Temperature != nil {
		params.Temperature = openai.Float(*req.Params.Temperature)
	}
	if req.Params.TopP != nil {
		params.TopP = openai.Float(*req.Params.TopP)
	}
	if req.Params.Logprobs != nil {
		params.Logprobs = openai.Int(int64(*req.Params.Logprobs))
	}
	if req.Params.Echo {
		params.Echo = openai.Bool(true)
	}
	if req.Params.N > 0 {
		params.N = openai.Int(int64(req.Params.N))
	}

	var reqOpts []option.RequestOption
	if len(req.Params.Stop) > 0 {
		reqOpts = append(reqOpts, option.WithJSONSet("stop", req.Params.Stop))
	}
	for key, value := range req.Params.Extra {
		reqOpts = append(reqOpts, option.WithJSONSet(key, value))
	}

	completion, err := p.client.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	resp := &Response{
		Model:   completion.Model,
		Choices: make([]Choice, 0, len(completion.Choices)),
		Usage: Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}
	for _, c := range completion.Choices {
		resp.Choices = append(resp.Choices, Choice{
			Text:         c.Text,
			Index:        int(c.Index),
			FinishReason: string(c.FinishReason),
			Logprobs:     convertLogprobs(c.Logprobs),
		})
	}
	return resp, nil
}

// Model returns the default model configured for this provider.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// classifyOpenAIError wraps err with a transient kind when the HTTP status
// calls for one. The SDK error stays reachable through errors.As.
func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if kind := StatusKind(apiErr.StatusCode); kind != nil {
			return fmt.Errorf("openai: completion failed: %w: %w", kind, err)
		}
	}
	return fmt.Errorf("openai: completion failed: %w", err)
}

func convertLogprobs(lp openai.CompletionChoiceLogprobs) *Logprobs {
	if len(lp.Tokens) == 0 && len(lp.TokenLogprobs) == 0 {
		return nil
	}
	out := &Logprobs{
		Tokens:        lp.Tokens,
		TokenLogprobs: lp.TokenLogprobs,
		TopLogprobs:   lp.TopLogprobs,
	}
	if len(lp.TextOffset) > 0 {
		out.TextOffset = make([]int, len(lp.TextOffset))
		for i, off := range lp.TextOffset {
			out.TextOffset[i] = int(off)
		}
	}
	return out
}
