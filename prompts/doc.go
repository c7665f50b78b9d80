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

// Package prompts holds every prompt the pipeline sends to the language model.
//
// Prompts live in one embedded YAML catalogue (templates.yaml) and are
// rendered with text/template. The catalogue provides:
//
//   - pipeline prompts: classify, summarize, generate, design_document
//   - category-specific system prompts and methodology guidance
//   - static rubrics: AI maturity levels 0-6 and document risk criteria
//   - agent instructions for the read-only tool server, one per Role
//
// Agent roles form a closed enum resolved with ParseRole, so an unknown
// role is rejected when the caller is configured rather than when an
// instruction is first needed.
package prompts
