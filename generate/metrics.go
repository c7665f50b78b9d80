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

import "github.com/poiesic/usecasegen/core"

var (
	machineLearningMetrics = []core.Metric{
		{Name: "Accuracy", Description: "The proportion of correctly classified instances out of the total instances", Threshold: 90},
		{Name: "Precision", Description: "The ratio of correctly predicted positive instances to all predicted positives", Threshold: 85},
		{Name: "Recall", Description: "The ratio of correctly predicted positive instances to actual positives", Threshold: 85},
		{Name: "F1-Score", Description: "The harmonic mean of precision and recall", Threshold: 85},
		{Name: "ROC-AUC", Description: "Area under the Receiver Operating Characteristic curve", Threshold: 90},
	}

	workflowMetrics = []core.Metric{
		{Name: "Response Relevance", Description: "Measure of how well the agent follows the defined workflow steps", Threshold: 85},
		{Name: "Workflow Accuracy", Description: "Percentage of tasks executed correctly within the defined workflow", Threshold: 90},
		{Name: "User Satisfaction", Description: "Rating of agent interaction quality and usefulness", Threshold: 90},
		{Name: "Response Time", Description: "Time taken for the agent to complete a workflow step", Threshold: 5},
	}

	agenticMetrics = []core.Metric{
		{Name: "Task Completion Rate", Description: "Percentage of tasks successfully executed by agents", Threshold: 90},
		{Name: "Decision Accuracy", Description: "Accuracy of autonomous decisions or recommendations", Threshold: 85},
		{Name: "System Reliability", Description: "Measure of uptime and fault tolerance of the AI system", Threshold: 95},
		{Name: "Collaboration Efficiency", Description: "Effectiveness of multi-agent coordination and workflow execution", Threshold: 85},
		{Name: "Adaptability", Description: "How effectively agents adapt to changing goals or environments", Threshold: 80},
	}

	genericMetrics = []core.Metric{
		{Name: "Generic Success Rate", Description: "Fallback metric when category is unclear", Threshold: 80},
	}
)

// DefaultMetrics returns the metric set injected when the model supplies none.
func DefaultMetrics(c core.Category) []core.Metric {
	var set []core.Metric
	switch c {
	case core.CategoryMachineLearning:
		set = machineLearningMetrics
	case core.CategoryAIWorkflowAgents:
		set = workflowMetrics
	case core.CategoryAgenticAI:
		set = agenticMetrics
	default:
		set = genericMetrics
	}
	out := make([]core.Metric, len(set))
	copy(out, set)
	return out
}

// normalizeMetrics keeps object entries, defaulting a missing threshold,
// and falls back to the category defaults when nothing usable remains.
func normalizeMetrics(raw any, c core.Category) []any {
	var metrics []any
	if list, ok := raw.([]any); ok {
		for _, entry := range list {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if _, ok := m["threshold"]; !ok {
				m["threshold"] = core.DefaultMetricThreshold
			}
			metrics = append(metrics, m)
		}
	}
	if len(metrics) > 0 {
		return metrics
	}

	defaults := DefaultMetrics(c)
	metrics = make([]any, len(defaults))
	for i, m := range defaults {
		metrics[i] = m.Item()
	}
	return metrics
}
