// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/poiesic/usecasegen/ai"
)

var (
	_ ai.Completer = (*Gateway)(nil)
	_ ai.Provider  = (*Provider)(nil)
)

// Gateway is an ai.Completer backed by an OpenAI-compatible chat API.
type Gateway struct {
	client  llms.Model
	config  *ai.Config
	limiter *rate.Limiter
	logger  *slog.Logger
}

func newGateway(config *ai.Config) (*Gateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}
	return newGatewayWithModel(config, client), nil
}

// newGatewayWithModel wraps an existing llms.Model. config must already be valid.
func newGatewayWithModel(config *ai.Config, client llms.Model) *Gateway {
	g := &Gateway{
		client: client,
		config: config,
		logger: slog.Default().With("component", "llm-gateway", "model", config.Model),
	}
	if config.RequestsPerSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst)
	}
	return g
}

// NewGateway creates a Completer for the configured host and model.
func NewGateway(config *ai.Config) (ai.Completer, error) {
	return newGateway(config)
}

// Complete sends one chat completion request. It never retries.
func (g *Gateway) Complete(ctx context.Context, req ai.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", &ai.ServiceError{Op: "rate limit", Err: err}
		}
	}

	content := make([]llms.MessageContent, 0, 2)
	if req.SystemPrompt != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, req.SystemPrompt))
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt))

	temperature := g.config.TextTemperature
	if req.JSONMode {
		temperature = g.config.JSONTemperature
	}
	opts := []llms.CallOption{llms.WithTemperature(temperature)}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}

	start := time.Now()
	response, err := g.client.GenerateContent(ctx, content, opts...)
	latency := time.Since(start)
	if err != nil {
		g.logger.Error("completion failed",
			"latency_ms", latency.Milliseconds(),
			"json_mode", req.JSONMode,
			"err", err)
		return "", &ai.ServiceError{Op: "complete", Err: err}
	}

	if len(response.Choices) < 1 {
		g.logger.Warn("no choices returned from model", "latency_ms", latency.Milliseconds())
		return "", &ai.ServiceError{Op: "complete", Err: ai.ErrNoChoices}
	}

	text := response.Choices[0].Content
	g.logger.Info("completion finished",
		"latency_ms", latency.Milliseconds(),
		"json_mode", req.JSONMode,
		"max_tokens", req.MaxTokens,
		"chars", len(text))
	return text, nil
}

// Provider owns the gateway built from a single configuration.
type Provider struct {
	gateway *Gateway
	logger  *slog.Logger
}

// NewProvider validates config and creates the gateway.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	gateway, err := newGateway(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		gateway: gateway,
		logger:  slog.Default().With("component", "openai-provider"),
	}, nil
}

// Completer returns the chat completion gateway.
func (p *Provider) Completer() ai.Completer {
	return p.gateway
}

// Close releases provider resources.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
