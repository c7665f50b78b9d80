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

// Package search finds use case records by keyword.
//
// A record matches when every query word, after lowercasing, punctuation
// trimming and stop-word removal, appears in at least one of its searchable
// fields: searchAttributesAsJson, modelName, modelSummary and
// documentSummary. Results are returned in id order.
package search
