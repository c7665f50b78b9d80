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

// Package openai provides the ai.Completer implementation for OpenAI-compatible APIs.
//
// The gateway uses the langchaingo library to talk to OpenAI or to local
// OpenAI-compatible servers (Ollama, LocalAI, vLLM). Every call carries a
// timeout, is optionally paced by a token bucket limiter and logs its
// latency. Calls are never retried.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    ai.WithModel("gpt-4o"),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	text, err := provider.Completer().Complete(ctx, ai.Request{
//	    Prompt:    "Summarize this document ...",
//	    MaxTokens: 600,
//	})
package openai
