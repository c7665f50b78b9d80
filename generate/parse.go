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
	"errors"
	"io"
	"strings"

	"github.com/poiesic/usecasegen/core"
)

var (
	errNotObject    = errors.New("model output is not a JSON object")
	errNoObject     = errors.New("no JSON object found in model output")
	errTrailingData = errors.New("unexpected data after JSON value")
)

// ParseRecord decodes the model output into a record. It tries, in order,
// the whole output, the span from the first '{' to the last '}', and that
// span after repairJSON. Valid JSON that is not an object fails at once.
func ParseRecord(raw string) (core.Item, error) {
	item, err := decodeObject(raw)
	if err == nil {
		return item, nil
	}
	if errors.Is(err, errNotObject) {
		return nil, core.NewGenerationError(raw, err)
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, core.NewGenerationError(raw, errNoObject)
	}
	candidate := raw[start : end+1]

	if item, err = decodeObject(candidate); err == nil {
		return item, nil
	}
	if item, err = decodeObject(repairJSON(candidate)); err == nil {
		return item, nil
	}
	return nil, core.NewGenerationError(raw, err)
}

// decodeObject decodes exactly one JSON value and requires it to be an
// object. Numbers are kept as json.Number so thresholds keep their text.
func decodeObject(s string) (core.Item, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return core.Item(obj), nil
}
