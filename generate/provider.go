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
	"strings"

	"github.com/poiesic/usecasegen/core"
)

// providerScan is checked in order; the first name found in the text wins.
var providerScan = []string{
	"AWS", "Azure", "GCP", "Google Cloud", "Google Cloud Platform",
	"Amazon Web Services", "Microsoft Azure",
}

var providerAliases = map[string]string{
	"Google Cloud":          "GCP",
	"Google Cloud Platform": "GCP",
	"Amazon Web Services":   "AWS",
	"Microsoft Azure":       "Azure",
}

// DetectCloudProvider returns the canonical provider named in text
// (case-insensitive), or hint when none is named. An empty hint means
// core.DefaultCloudProvider.
func DetectCloudProvider(text, hint string) string {
	lower := strings.ToLower(text)
	for _, name := range providerScan {
		if !strings.Contains(lower, strings.ToLower(name)) {
			continue
		}
		if canonical, ok := providerAliases[name]; ok {
			return canonical
		}
		return name
	}
	if hint == "" {
		return core.DefaultCloudProvider
	}
	return hint
}
