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

package core

import (
	"fmt"
	"strings"
)

// Format identifies the container format of an uploaded document.
type Format int

const (
	// FormatUnknown is any file the extractor cannot read.
	FormatUnknown Format = iota
	// FormatPDF is a Portable Document Format file.
	FormatPDF
	// FormatDOCX is an Office Open XML word processing document.
	FormatDOCX
	// FormatTXT is a plain UTF-8 text file.
	FormatTXT
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "PDF"
	case FormatDOCX:
		return "DOCX"
	case FormatTXT:
		return "TXT"
	default:
		return "UNKNOWN"
	}
}

// Category is the AI use case taxonomy assigned to every ingested document.
type Category int

const (
	// CategoryAIWorkflowAgents covers step-based flows, chatbots, RAG and summarization.
	// It is the zero value so an unset category is always a valid one.
	CategoryAIWorkflowAgents Category = iota
	// CategoryMachineLearning covers prediction, classification, regression and forecasting.
	CategoryMachineLearning
	// CategoryAgenticAI covers multi-agent, orchestration and goal-directed autonomy.
	CategoryAgenticAI
)

// Categories lists every category in classifier priority order.
var Categories = []Category{CategoryMachineLearning, CategoryAgenticAI, CategoryAIWorkflowAgents}

// String returns the human-readable label persisted in records.
func (c Category) String() string {
	switch c {
	case CategoryMachineLearning:
		return "Machine Learning"
	case CategoryAgenticAI:
		return "Agentic AI"
	default:
		return "AI Workflow Agents"
	}
}

// ParseCategory maps a label back to a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), c.String()) {
			return c, nil
		}
	}
	return CategoryAIWorkflowAgents, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Approach is the implementation style tag assigned next to the category.
type Approach int

const (
	// ApproachCustomStack is any stack that is not Next.js with ADK.
	ApproachCustomStack Approach = iota
	// ApproachDirectIntegration is a Next.js front end calling ADK agents directly.
	ApproachDirectIntegration
	// ApproachOrchestratedMultiAgent is Next.js with ADK agents coordinated over MCP.
	ApproachOrchestratedMultiAgent
)

// String returns the label persisted as aiApproach.
func (a Approach) String() string {
	switch a {
	case ApproachDirectIntegration:
		return "Next.js with ADK"
	case ApproachOrchestratedMultiAgent:
		return "MCP-Oriented Orchestration"
	default:
		return "Custom AI Stack"
	}
}

// ClassificationResult is the classifier verdict for a document.
type ClassificationResult struct {
	Category  Category
	Approach  Approach
	Rationale string
	// Fallback is true when the keyword scorer produced the result.
	Fallback bool
}

// ExtractedText is normalized document text and its content hash.
type ExtractedText struct {
	Text        string
	ContentHash string
}

// Metric is a success measure attached to a use case.
type Metric struct {
	Name        string  `json:"metricName"`
	Description string  `json:"metricDescription"`
	Threshold   float64 `json:"threshold"`
}

// Item returns the metric in the map form stored in records.
func (m Metric) Item() map[string]any {
	return map[string]any{
		"metricName":        m.Name,
		"metricDescription": m.Description,
		"threshold":         m.Threshold,
	}
}

// Record field names shared by the generator, the pipeline and the store.
const (
	FieldID                  = "id"
	FieldCreatedAt           = "createdAt"
	FieldUpdatedAt           = "updatedAt"
	FieldSourceDocURL        = "sourceDocURL"
	FieldCategory            = "category"
	FieldProcessingStatus    = "processingStatus"
	FieldRiskFrameworkID     = "riskframeworkid"
	FieldAIApproach          = "aiApproach"
	FieldAICategory          = "aiCategory"
	FieldDocumentHash        = "documentHash"
	FieldDocumentSummary     = "documentSummary"
	FieldDesignDocument      = "designDocument"
	FieldAICloudProvider     = "aiCloudProvider"
	FieldUsecaseCategory     = "usecaseCategory"
	FieldCloudProvider       = "cloudProvider"
	FieldStatus              = "status"
	FieldMetrics             = "metrics"
	FieldPlatform            = "platform"
	FieldBusinessUsage       = "businessUsage"
	FieldModelDescription    = "modelDescription"
	FieldModelName           = "modelName"
	FieldModelSummary        = "modelSummary"
	FieldSector              = "sector"
	FieldMethodologyType     = "AIMethodologyType"
	FieldSearchAttributes    = "searchAttributesAsJson"
	FieldQuestions           = "questions"
	FieldLevel               = "level"
	FieldIsProposalGenerated = "isProposalGenerated"
)

// Fixed literals written on every persisted record.
const (
	StatusNotStarted       = "Not yet started"
	InventoryCategory      = "AI Inventory"
	ProcessingCompleted    = "completed"
	DefaultIDPrefix        = "AI-UC-AST-"
	DefaultCloudProvider   = "GCP"
	DefaultMetricThreshold = 80
)

// RequiredFields are the generated fields every record must carry.
var RequiredFields = []string{
	"businessUsage", "currentBusinessUsage", "department", "usecaseCategory",
	"impact", "level", "AIMethodologyType", "baseModelName", "keyActivity",
	"modelInput", "modelOutput", "modelName", "modelDescription", "modelSummary",
	"modelPurpose", "modelUsage", "overallRisk", "platform", "cloudProvider",
	"priorityType", "sector", "useFrequency", "metrics", "status",
	"searchAttributesAsJson", "questions", "isProposalGenerated",
}

// Item is a schemaless record as persisted in the record store.
type Item map[string]any

// String returns the attribute as a string, or "" when absent or not a string.
func (it Item) String(key string) string {
	if s, ok := it[key].(string); ok {
		return s
	}
	return ""
}

// ID returns the record identifier.
func (it Item) ID() string {
	return it.String(FieldID)
}

// Clone returns a shallow copy of the item.
func (it Item) Clone() Item {
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}
