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

package generate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/usecasegen/ai"
	"github.com/poiesic/usecasegen/core"
	"github.com/poiesic/usecasegen/prompts"
)

// maxTokens leaves room for the full 27-field record with long descriptions.
const maxTokens = 7000

// Input is everything the generator needs for one document.
type Input struct {
	Text     string
	Category core.Category

	// CloudProviderHint is used only when the text names no provider.
	CloudProviderHint string

	// Catalogue restricts methodology types and metrics. May be nil.
	Catalogue *Catalogue
}

// Generator turns document text into a structured use case record.
type Generator struct {
	completer ai.Completer
	library   *prompts.Library
	logger    *slog.Logger
}

// New creates a Generator.
func New(completer ai.Completer, library *prompts.Library) *Generator {
	return &Generator{
		completer: completer,
		library:   library,
		logger:    slog.Default().With("component", "generator"),
	}
}

// Generate asks the model for a record and returns it enhanced. Gateway
// failures are returned unchanged (*ai.ServiceError); unparseable output
// is a *core.GenerationError.
func (g *Generator) Generate(ctx context.Context, in Input) (core.Item, error) {
	provider := DetectCloudProvider(in.Text, in.CloudProviderHint)
	guidance := g.library.ForCategory(in.Category)

	prompt, err := g.library.Build(prompts.Generate, prompts.Input{
		Text:                 in.Text,
		Category:             in.Category.String(),
		CloudProvider:        provider,
		Guidance:             guidance.Guidance,
		LevelRubric:          g.library.LevelRubric(),
		RiskGuidance:         g.library.RiskGuidance(),
		MethodologyTypesJSON: in.Catalogue.methodologyTypesJSON(),
		MetricsJSON:          in.Catalogue.metricsJSON(),
	})
	if err != nil {
		return nil, fmt.Errorf("build generate prompt: %w", err)
	}

	g.logger.Debug("generating use case",
		"category", in.Category.String(),
		"cloud_provider", provider,
		"catalogue", !in.Catalogue.Empty(),
		"chars", len(in.Text))

	raw, err := g.completer.Complete(ctx, ai.Request{
		Prompt:       prompt.User,
		SystemPrompt: guidance.System,
		MaxTokens:    maxTokens,
		JSONMode:     true,
	})
	if err != nil {
		return nil, err
	}

	item, err := ParseRecord(raw)
	if err != nil {
		g.logger.Error("failed to parse generated record", "err", err)
		return nil, err
	}

	return Enhance(item, in.Category, provider), nil
}
