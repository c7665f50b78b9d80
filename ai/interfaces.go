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

import "context"

// Request is a single chat completion request.
type Request struct {
	// Prompt is the user message.
	Prompt string

	// SystemPrompt is sent as the system message when non-empty.
	SystemPrompt string

	// MaxTokens caps the completion length. Zero leaves the server default.
	MaxTokens int

	// JSONMode asks the model for a JSON object. The returned text is not
	// guaranteed to parse; callers must validate it.
	JSONMode bool
}

// Completer sends one prompt to a language model and returns its text.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete performs exactly one outbound call. It never retries.
	// Transport failures and empty responses are returned as *ServiceError.
	Complete(ctx context.Context, req Request) (string, error)
}

// Provider owns a Completer and the resources behind it.
type Provider interface {
	// Completer returns the chat completion service.
	// The returned Completer is safe for concurrent use.
	Completer() Completer

	// Close releases resources held by the provider.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
