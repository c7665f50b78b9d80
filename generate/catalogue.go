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

	"github.com/poiesic/usecasegen/core"
)

// Catalogue is the master list of methodology types and metrics the model
// must choose from instead of inventing its own.
type Catalogue struct {
	MethodologyTypes []string
	Metrics          []any
}

// NewCatalogue collects the distinct AIMethodologyType values and metric
// entries from methodology mapping items, in first-seen order.
func NewCatalogue(items []core.Item) *Catalogue {
	c := &Catalogue{}
	seenTypes := make(map[string]struct{})
	seenMetrics := make(map[string]struct{})

	for _, item := range items {
		if t := item.String(core.FieldMethodologyType); t != "" {
			if _, ok := seenTypes[t]; !ok {
				seenTypes[t] = struct{}{}
				c.MethodologyTypes = append(c.MethodologyTypes, t)
			}
		}

		metrics, ok := item[core.FieldMetrics].([]any)
		if !ok {
			continue
		}
		for _, m := range metrics {
			key := metricKey(m)
			if _, ok := seenMetrics[key]; ok {
				continue
			}
			seenMetrics[key] = struct{}{}
			c.Metrics = append(c.Metrics, m)
		}
	}
	return c
}

// metricKey identifies a metric entry by content. encoding/json sorts map
// keys, so equal maps yield equal keys.
func metricKey(m any) string {
	if b, err := json.Marshal(m); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", m)
}

// Empty reports whether the catalogue has nothing to offer the prompt.
func (c *Catalogue) Empty() bool {
	return c == nil || (len(c.MethodologyTypes) == 0 && len(c.Metrics) == 0)
}

func (c *Catalogue) methodologyTypesJSON() string {
	if c == nil || len(c.MethodologyTypes) == 0 {
		return ""
	}
	return indentJSON(c.MethodologyTypes)
}

func (c *Catalogue) metricsJSON() string {
	if c == nil || len(c.Metrics) == 0 {
		return ""
	}
	return indentJSON(c.Metrics)
}

func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}
