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

// Package redis provides Redis-backed coordination for ingestion workers
// running in separate processes: a mutual-exclusion Lock that serializes
// the dedupe, allocate and persist section per collection, and a Counter
// that hands out sequential record ids with INCR.
//
// Both are optional. A single process works with the in-process locker and
// the scan allocator from package ingestion.
package redis
