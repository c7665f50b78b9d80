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

package storage

import (
	"fmt"
	"strings"

	"github.com/poiesic/usecasegen/core"
)

// Filter decides whether a scanned item is returned.
type Filter interface {
	Match(item core.Item) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(item core.Item) bool

// Match calls f(item).
func (f FilterFunc) Match(item core.Item) bool { return f(item) }

// Eq matches items whose attr is present and equal to value. Values are
// compared by their printed form so json.Number("1") equals 1.
func Eq(attr string, value any) Filter {
	want := fmt.Sprint(value)
	return FilterFunc(func(item core.Item) bool {
		v, ok := item[attr]
		if !ok || v == nil {
			return false
		}
		return fmt.Sprint(v) == want
	})
}

// Contains matches string attributes holding substr and list attributes
// with an element equal to substr. Matching is case sensitive.
func Contains(attr, substr string) Filter {
	return FilterFunc(func(item core.Item) bool {
		switch v := item[attr].(type) {
		case string:
			return strings.Contains(v, substr)
		case []any:
			for _, e := range v {
				if fmt.Sprint(e) == substr {
					return true
				}
			}
		case []string:
			for _, e := range v {
				if e == substr {
					return true
				}
			}
		}
		return false
	})
}

// And matches items accepted by every filter. Nil filters are ignored.
func And(filters ...Filter) Filter {
	return FilterFunc(func(item core.Item) bool {
		for _, f := range filters {
			if f != nil && !f.Match(item) {
				return false
			}
		}
		return true
	})
}

// Matches reports whether f accepts item, treating a nil filter as match-all.
func Matches(f Filter, item core.Item) bool {
	return f == nil || f.Match(item)
}
