package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/usecasegen/ai"
	"github.com/poiesic/usecasegen/ai/mock"
	"github.com/poiesic/usecasegen/core"
	"github.com/poiesic/usecasegen/prompts"
)

func newClassifier(t *testing.T, fn func(context.Context, ai.Request) (string, error)) (*Classifier, *mock.MockCompleter) {
	t.Helper()
	lib, err := prompts.Default()
	require.NoError(t, err)

	completer := mock.NewMockCompleter()
	completer.CompleteFunc = fn
	return New(completer, lib), completer
}

func TestClassify_UsesModelAnswer(t *testing.T) {
	c, completer := newClassifier(t, func(ctx context.Context, req ai.Request) (string, error) {
		return "Category: Agentic AI\nApproach: Next.js + ADK + MCP\nReason: Several agents collaborate over MCP.", nil
	})

	got := c.Classify(context.Background(), "document text")

	assert.Equal(t, core.CategoryAgenticAI, got.Category)
	assert.Equal(t, core.ApproachOrchestratedMultiAgent, got.Approach)
	assert.Equal(t, "Several agents collaborate over MCP.", got.Rationale)
	assert.False(t, got.Fallback)

	reqs := completer.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, 300, reqs[0].MaxTokens)
	assert.False(t, reqs[0].JSONMode)
	assert.Contains(t, reqs[0].Prompt, "document text")
	assert.Contains(t, reqs[0].SystemPrompt, "categorization and approach expert")
}

func TestClassify_FallsBackOnGatewayError(t *testing.T) {
	c, _ := newClassifier(t, func(ctx context.Context, req ai.Request) (string, error) {
		return "", &ai.ServiceError{Op: "complete", Err: errors.New("timeout")}
	})

	tests := []struct {
		name     string
		text     string
		category core.Category
		approach core.Approach
	}{
		{
			name:     "regression wording is machine learning",
			text:     "predict customer churn using regression",
			category: core.CategoryMachineLearning,
			approach: core.ApproachCustomStack,
		},
		{
			name:     "empty text defaults to workflow agents",
			text:     "",
			category: core.CategoryAIWorkflowAgents,
			approach: core.ApproachCustomStack,
		},
		{
			name:     "multi-agent orchestration",
			text:     "Autonomous multi-agent orchestration with a planner that uses MCP for tool use",
			category: core.CategoryAgenticAI,
			approach: core.ApproachOrchestratedMultiAgent,
		},
		{
			name:     "next.js with adk",
			text:     "A chatbot built with Next.js and ADK to summarize tickets",
			category: core.CategoryAIWorkflowAgents,
			approach: core.ApproachDirectIntegration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(context.Background(), tt.text)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.approach, got.Approach)
			assert.True(t, got.Fallback)
		})
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		category core.Category
		approach core.Approach
	}{
		{
			name:     "machine learning wins over later mentions",
			response: "Category: Machine Learning\nApproach: Custom AI Stack\nReason: mentions Agentic AI too",
			category: core.CategoryMachineLearning,
			approach: core.ApproachCustomStack,
		},
		{
			name:     "direct integration",
			response: "Category: AI Workflow Agents\nApproach: Next.js + ADK",
			category: core.CategoryAIWorkflowAgents,
			approach: core.ApproachDirectIntegration,
		},
		{
			name:     "unrecognized labels use defaults",
			response: "I cannot decide.",
			category: core.CategoryAIWorkflowAgents,
			approach: core.ApproachCustomStack,
		},
		{
			name:     "labels are case sensitive",
			response: "Category: machine learning",
			category: core.CategoryAIWorkflowAgents,
			approach: core.ApproachCustomStack,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseResponse(tt.response)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.approach, got.Approach)
		})
	}
}

func TestScores_Category(t *testing.T) {
	tests := []struct {
		name   string
		scores Scores
		want   core.Category
	}{
		{"ml strict max", Scores{MachineLearning: 3, AIWorkflowAgents: 1, AgenticAI: 2}, core.CategoryMachineLearning},
		{"agentic strict max", Scores{MachineLearning: 1, AIWorkflowAgents: 1, AgenticAI: 2}, core.CategoryAgenticAI},
		{"workflow strict max", Scores{MachineLearning: 0, AIWorkflowAgents: 2, AgenticAI: 1}, core.CategoryAIWorkflowAgents},
		{"tie for top", Scores{MachineLearning: 2, AIWorkflowAgents: 0, AgenticAI: 2}, core.CategoryAIWorkflowAgents},
		{"all zero", Scores{}, core.CategoryAIWorkflowAgents},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scores.Category())
		})
	}
}

func TestScore_CountsKeywordsOnce(t *testing.T) {
	s := Score("Predict, predict, PREDICT the forecast")
	// "predict" and "forecast" match; "prediction" does not.
	assert.Equal(t, 2, s.MachineLearning)
}
