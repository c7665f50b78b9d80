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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/usecasegen/core"
)

// NotSpecified fills required text fields the model left empty.
const NotSpecified = "Not specified"

// stringFields must be plain strings in the stored record.
var stringFields = []string{core.FieldPlatform, core.FieldBusinessUsage, core.FieldModelDescription}

// droppedFields are never persisted from model output.
var droppedFields = []string{core.FieldProcessingStatus, "documentType", "userId", "modelProcess"}

// searchAttributeFields feed searchAttributesAsJson, in order.
var searchAttributeFields = []string{core.FieldMethodologyType, core.FieldModelName, core.FieldSector, core.FieldPlatform}

// Enhance normalizes a parsed record in place and returns it:
//   - usecaseCategory and cloudProvider are forced to the pipeline's values
//   - metrics are validated, falling back to the category defaults
//   - platform, businessUsage and modelDescription are coerced to strings
//   - searchAttributesAsJson is rebuilt from the coerced fields
//   - status is reset and pipeline-owned fields are dropped
//   - required fields still missing get deterministic placeholders
//   - floating point values become decimal json.Number
func Enhance(item core.Item, category core.Category, cloudProvider string) core.Item {
	if item == nil {
		item = core.Item{}
	}

	item[core.FieldUsecaseCategory] = category.String()
	item[core.FieldCloudProvider] = cloudProvider
	item[core.FieldMetrics] = normalizeMetrics(item[core.FieldMetrics], category)

	for _, f := range stringFields {
		item[f] = coerceString(item[f])
	}

	attrs := make([]string, len(searchAttributeFields))
	for i, f := range searchAttributeFields {
		attrs[i] = coerceString(item[f])
	}
	item[core.FieldSearchAttributes] = strings.Join(attrs, ",")

	item[core.FieldStatus] = core.StatusNotStarted
	for _, f := range droppedFields {
		delete(item, f)
	}

	backfill(item)

	return core.ToDecimal(item).(core.Item)
}

// coerceString renders v as a string; lists are joined with ", " and nil
// becomes the empty string.
func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, coerceString(e))
		}
		return strings.Join(parts, ", ")
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
	}
	return fmt.Sprintf("%v", v)
}

func backfill(item core.Item) {
	for _, f := range core.MissingFields(item) {
		switch f {
		case core.FieldLevel:
			item[f] = 0
		case core.FieldQuestions:
			item[f] = []any{}
		case core.FieldIsProposalGenerated:
			item[f] = false
		default:
			item[f] = NotSpecified
		}
	}
}
