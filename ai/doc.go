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

// Package ai provides the language model abstraction used by usecasegen.
//
// The classifier, the record generator and the design document writer all
// depend on the single Completer interface defined here rather than on a
// concrete client, so business logic can be tested without a model server.
//
// # Implementation Packages
//
//   - ai/openai: Production gateway using OpenAI-compatible chat APIs
//   - ai/mock: Test double with injectable behavior and call recording
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewGateway) return
// INTERFACE types so callers cannot couple to the concrete client.
//
//	provider, err := openai.NewProvider(config)  // returns ai.Provider
//
// Test constructors (mock.NewMockCompleter) return CONCRETE types so tests
// can inject behavior and inspect recorded requests.
//
//	completer := mock.NewMockCompleter()
//	completer.CompleteFunc = func(ctx context.Context, req ai.Request) (string, error) { ... }
//	count := completer.CallCount()
//
// # Call Semantics
//
// Every Complete call is exactly one outbound request. The gateway never
// retries; callers that need a degraded answer (the keyword classifier,
// the empty summary) implement it themselves. Failures surface as
// *ServiceError, which matches core.ErrService under errors.Is.
package ai
