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

// Package generate produces the structured use case record for a document.
//
// Generation is one JSON-mode model call followed by deterministic
// post-processing:
//
//  1. The cloud provider is detected from the text (aliases folded to
//     GCP, AWS or Azure), falling back to the caller's hint.
//  2. The prompt carries category-specific guidance and, when available,
//     the master catalogue of methodology types and metrics.
//  3. The output is parsed leniently (whole text, outermost braces, then
//     a repaired form). Anything still unparseable is a GenerationError.
//  4. Enhance forces pipeline-owned fields, validates metrics, coerces
//     string fields, backfills required fields and converts floats to
//     decimals.
package generate
