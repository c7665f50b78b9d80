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
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValidateRecord checks the invariants of a record about to be persisted.
//
// Validation rules:
//   - id must start with prefix and carry a numeric suffix of 3+ digits
//   - documentHash must be set
//   - status must be the fixed initial literal
//   - every required field must be present and non-empty
func ValidateRecord(item Item, prefix string) error {
	if item == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	if !ValidID(item.ID(), prefix) {
		return fmt.Errorf("%w: bad id %q", ErrInvalidRecord, item.ID())
	}
	if item.String(FieldDocumentHash) == "" {
		return fmt.Errorf("%w: missing %s", ErrInvalidRecord, FieldDocumentHash)
	}
	if item.String(FieldStatus) != StatusNotStarted {
		return fmt.Errorf("%w: status must be %q", ErrInvalidRecord, StatusNotStarted)
	}
	if missing := MissingFields(item); len(missing) > 0 {
		return fmt.Errorf("%w: missing fields %s", ErrInvalidRecord, strings.Join(missing, ", "))
	}
	return nil
}

// ValidID reports whether id is prefix followed by at least three digits.
func ValidID(id, prefix string) bool {
	suffix, ok := strings.CutPrefix(id, prefix)
	if !ok || len(suffix) < 3 {
		return false
	}
	_, err := strconv.ParseUint(suffix, 10, 64)
	return err == nil
}

// MissingFields returns the required fields that are absent or empty.
// Booleans and numbers count as present; empty lists count as present for
// questions, which may legitimately be empty.
func MissingFields(item Item) []string {
	var missing []string
	for _, f := range RequiredFields {
		v, ok := item[f]
		if !ok || v == nil {
			missing = append(missing, f)
			continue
		}
		switch t := v.(type) {
		case string:
			if strings.TrimSpace(t) == "" {
				missing = append(missing, f)
			}
		case []any:
			if len(t) == 0 && f != FieldQuestions {
				missing = append(missing, f)
			}
		}
	}
	return missing
}

// ToDecimal recursively replaces floating point leaves with fixed-point
// json.Number values. Integers stay integers and other types pass through.
func ToDecimal(v any) any {
	switch t := v.(type) {
	case float64:
		return floatDecimal(t)
	case float32:
		return floatDecimal(float64(t))
	case json.Number:
		if f, err := t.Float64(); err == nil && strings.ContainsAny(string(t), "eE") {
			return floatDecimal(f)
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = ToDecimal(val)
		}
		return out
	case Item:
		out := make(Item, len(t))
		for k, val := range t {
			out[k] = ToDecimal(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = ToDecimal(val)
		}
		return out
	default:
		return v
	}
}

func floatDecimal(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64))
}
