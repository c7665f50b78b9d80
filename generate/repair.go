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
	"regexp"
	"strings"
)

var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

// repairJSON applies the last-resort fixes for model output that almost
// parses: over-escaped quotes and newlines, trailing commas before a
// closing bracket, and object keys missing their opening quote.
func repairJSON(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = trailingComma.ReplaceAllString(s, "$1")
	return quoteKeys(s)
}

// quoteKeys restores a missing opening quote on object keys, turning
// `{ name": 1}` into `{ "name": 1}`. Keys are only rewritten when the
// closing `":` is present, so ordinary values are left untouched.
func quoteKeys(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+16)

	for i := 0; i < len(in); {
		ch := in[i]
		out = append(out, ch)
		i++
		if ch != '{' && ch != ',' {
			continue
		}

		for i < len(in) && isSpace(in[i]) {
			out = append(out, in[i])
			i++
		}
		if i >= len(in) || !isLetter(in[i]) {
			continue
		}

		start := i
		for i < len(in) && (isLetter(in[i]) || in[i] == '_' || in[i] == ' ') {
			i++
		}
		if i+1 < len(in) && in[i] == '"' && in[i+1] == ':' {
			out = append(out, '"')
			out = append(out, []rune(strings.TrimSpace(string(in[start:i])))...)
			continue
		}
		out = append(out, in[start:i]...)
	}
	return string(out)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
