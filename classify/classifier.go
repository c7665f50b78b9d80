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

package classify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/usecasegen/ai"
	"github.com/poiesic/usecasegen/core"
	"github.com/poiesic/usecasegen/prompts"
)

// maxTokens bounds the three-line classification answer.
const maxTokens = 300

// Classifier assigns a category and an implementation approach to a document.
type Classifier struct {
	completer ai.Completer
	library   *prompts.Library
	logger    *slog.Logger
}

// New creates a Classifier that asks completer first and falls back to
// keyword scoring when the call fails.
func New(completer ai.Completer, library *prompts.Library) *Classifier {
	return &Classifier{
		completer: completer,
		library:   library,
		logger:    slog.Default().With("component", "classifier"),
	}
}

// Classify never fails: any gateway or prompt error degrades to the keyword
// scorer, which always yields a valid result.
func (c *Classifier) Classify(ctx context.Context, text string) core.ClassificationResult {
	prompt, err := c.library.Build(prompts.Classify, prompts.Input{Text: text})
	if err != nil {
		c.logger.Error("failed to build classify prompt", "err", err)
		return Fallback(text)
	}

	response, err := c.completer.Complete(ctx, ai.Request{
		Prompt:       prompt.User,
		SystemPrompt: prompt.System,
		MaxTokens:    maxTokens,
	})
	if err != nil {
		c.logger.Warn("classification call failed, using keyword fallback", "err", err)
		return Fallback(text)
	}

	result := ParseResponse(response)
	c.logger.Debug("classified document",
		"category", result.Category.String(),
		"approach", result.Approach.String())
	return result
}

// ParseResponse reads the labelled answer. Labels are matched as substrings
// anywhere in the response in fixed priority order, so a chatty answer that
// mentions several categories resolves deterministically.
func ParseResponse(response string) core.ClassificationResult {
	result := core.ClassificationResult{
		Category: core.CategoryAIWorkflowAgents,
		Approach: core.ApproachCustomStack,
	}

	for _, cat := range core.Categories {
		if strings.Contains(response, cat.String()) {
			result.Category = cat
			break
		}
	}

	switch {
	case strings.Contains(response, "Next.js + ADK + MCP"):
		result.Approach = core.ApproachOrchestratedMultiAgent
	case strings.Contains(response, "Next.js + ADK"):
		result.Approach = core.ApproachDirectIntegration
	}

	for _, line := range strings.Split(response, "\n") {
		if reason, ok := strings.CutPrefix(strings.TrimSpace(line), "Reason:"); ok {
			result.Rationale = strings.TrimSpace(reason)
			break
		}
	}
	return result
}
