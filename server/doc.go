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

// Package server exposes the ingestion pipeline over HTTP.
//
// Routes:
//   - GET  /health                      liveness check
//   - POST /upload-document             raw file bytes, base64 in JSON
//   - POST /process-usecase             pre-uploaded object plus hash
//   - GET  /usecases/:tenant/search?q=  keyword search over records
//   - GET  /usecases/:tenant/:id        fetch one record
//   - anything else                     service description
//
// Every ingestion response uses the same JSON envelope. Status is 200 on
// success, 400 for validation, duplicate and unsupported input, and 500 for
// everything else. Messages are short and never echo store identifiers or
// raw model output.
package server
