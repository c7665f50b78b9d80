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
	"fmt"
	"strings"

	"github.com/poiesic/usecasegen/core"
)

var (
	machineLearningKeywords = []string{
		"predict", "prediction", "classify", "classification", "cluster",
		"regression", "forecast", "anomaly detection", "pattern recognition",
		"supervised learning", "unsupervised learning", "recommendation",
		"feature engineering", "model training", "algorithm",
		"neural network", "deep learning", "random forest", "svm",
		"decision tree", "ensemble", "xgboost", "logistic regression",
		"clustering", "optimization", "data mining",
	}

	workflowKeywords = []string{
		"chatbot", "rag", "retrieval augmented generation",
		"summarization", "summarize", "dialogue", "conversation",
		"workflow", "approval process", "single shot", "few shot",
		"content creation", "form processing", "automation step",
	}

	agenticKeywords = []string{
		"agent", "autonomous", "multi-agent", "collaboration",
		"orchestration", "decision-making", "reasoning", "goal-oriented",
		"workflow automation", "adaptive planning",
		"self-improving", "tool use", "api orchestration", "planner",
		"mcp", "model context protocol",
	}
)

// Scores holds the keyword hit count per category.
type Scores struct {
	MachineLearning  int
	AIWorkflowAgents int
	AgenticAI        int
}

// Score counts, per category, how many keywords occur in text. Each keyword
// counts once regardless of how often it appears.
func Score(text string) Scores {
	lower := strings.ToLower(text)
	return Scores{
		MachineLearning:  countPresent(lower, machineLearningKeywords),
		AIWorkflowAgents: countPresent(lower, workflowKeywords),
		AgenticAI:        countPresent(lower, agenticKeywords),
	}
}

func countPresent(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

// Category returns the category with a strictly greater score than both
// others, or AIWorkflowAgents on any tie.
func (s Scores) Category() core.Category {
	switch {
	case s.MachineLearning > s.AIWorkflowAgents && s.MachineLearning > s.AgenticAI:
		return core.CategoryMachineLearning
	case s.AgenticAI > s.MachineLearning && s.AgenticAI > s.AIWorkflowAgents:
		return core.CategoryAgenticAI
	default:
		return core.CategoryAIWorkflowAgents
	}
}

// FallbackApproach derives the approach from keyword presence alone.
func FallbackApproach(text string) core.Approach {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "mcp") || strings.Contains(lower, "multi-agent") || strings.Contains(lower, "orchestration"):
		return core.ApproachOrchestratedMultiAgent
	case strings.Contains(lower, "next.js") && strings.Contains(lower, "adk"):
		return core.ApproachDirectIntegration
	default:
		return core.ApproachCustomStack
	}
}

// Fallback classifies text without a language model.
func Fallback(text string) core.ClassificationResult {
	scores := Score(text)
	return core.ClassificationResult{
		Category:  scores.Category(),
		Approach:  FallbackApproach(text),
		Rationale: fmt.Sprintf("keyword fallback (ml=%d, workflow=%d, agentic=%d)",
			scores.MachineLearning, scores.AIWorkflowAgents, scores.AgenticAI),
		Fallback: true,
	}
}
