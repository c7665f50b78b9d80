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

package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for the language model gateway.
type Config struct {
	// Host is the base URL of the OpenAI-compatible chat completions API.
	// Example: "https://api.openai.com/v1", "http://localhost:11434/v1"
	Host string

	// APIKey is the bearer token sent with every request.
	// Local OpenAI-compatible servers accept any non-empty value.
	APIKey string

	// Model is the chat model identifier.
	// Example: "gpt-4o", "qwen2.5:7b"
	Model string

	// Timeout bounds a single completion call.
	// Default: 120s
	Timeout time.Duration

	// TextTemperature is the sampling temperature for free-text calls.
	// Default: 0.3
	TextTemperature float64

	// JSONTemperature is the sampling temperature for JSON mode calls.
	// Default: 0.5
	JSONTemperature float64

	// RequestsPerSecond caps outbound calls. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the token bucket size used with RequestsPerSecond.
	// Default: 1
	Burst int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the API base URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithAPIKey sets the API token.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithModel sets the chat model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithTemperatures sets the text and JSON mode sampling temperatures.
func WithTemperatures(text, json float64) ConfigOption {
	return func(c *Config) {
		c.TextTemperature = text
		c.JSONTemperature = json
	}
}

// WithRateLimit caps outbound requests per second with the given burst.
func WithRateLimit(rps float64, burst int) ConfigOption {
	return func(c *Config) {
		c.RequestsPerSecond = rps
		c.Burst = burst
	}
}

// DefaultConfig returns a Config with defaults for the hosted OpenAI API.
func DefaultConfig() *Config {
	return &Config{
		Host:            "https://api.openai.com/v1",
		Model:           "gpt-4o",
		Timeout:         120 * time.Second,
		TextTemperature: 0.3,
		JSONTemperature: 0.5,
		Burst:           1,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434"),
//	    WithModel("qwen2.5:7b"),
//	    WithAPIKey("none"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to the host if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
	if c.RequestsPerSecond > 0 && c.Burst < 1 {
		c.Burst = 1
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.APIKey == "" {
		return errors.New("ai config: APIKey is required")
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.Timeout <= 0 {
		return errors.New("ai config: Timeout must be positive")
	}
	if c.TextTemperature < 0 || c.TextTemperature > 2 || c.JSONTemperature < 0 || c.JSONTemperature > 2 {
		return errors.New("ai config: temperatures must be between 0 and 2")
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("ai config: RequestsPerSecond must not be negative")
	}
	return nil
}
