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

package mock

import (
	"context"
	"sync"

	"github.com/poiesic/usecasegen/ai"
)

var (
	_ ai.Completer = (*MockCompleter)(nil)
	_ ai.Provider  = (*MockProvider)(nil)
)

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via function fields and records
// every request it receives. It is safe for concurrent use.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Complete echoes the prompt back.
	CompleteFunc func(ctx context.Context, req ai.Request) (string, error)

	mu       sync.Mutex
	requests []ai.Request
}

// NewMockCompleter creates a mock completer with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete records req and delegates to CompleteFunc.
func (m *MockCompleter) Complete(ctx context.Context, req ai.Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return req.Prompt, nil
}

// CallCount returns the number of Complete calls.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every request received so far.
func (m *MockCompleter) Requests() []ai.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ai.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Reset clears recorded requests and custom functions.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.CompleteFunc = nil
}

// MockProvider is a test double for ai.Provider.
type MockProvider struct {
	completer *MockCompleter
	closed    bool
}

// NewMockProvider creates a provider around a fresh MockCompleter.
func NewMockProvider() *MockProvider {
	return &MockProvider{completer: NewMockCompleter()}
}

// NewMockProviderWithCompleter creates a provider around completer.
func NewMockProviderWithCompleter(completer *MockCompleter) *MockProvider {
	return &MockProvider{completer: completer}
}

// Completer returns the mock completer.
func (p *MockProvider) Completer() ai.Completer {
	return p.completer
}

// GetMockCompleter returns the underlying mock for test assertions.
func (p *MockProvider) GetMockCompleter() *MockCompleter {
	return p.completer
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed
}
