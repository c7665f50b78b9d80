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

// Package storage defines the record store used by usecasegen.
//
// Records are schemaless items (core.Item) grouped into named collections and
// keyed by their "id" attribute. Collection names follow the deployment naming
// convention computed by Naming:
//
//	<stage>-<app>-usecaseAssessments-<tenant>
//	<stage>-<app>-frameworks
//	<stage>-<app>-methodologyMetricsMapping
//
// # Scans
//
// Scan pages through a collection with an optional Filter and id Prefix.
// Limit bounds the records examined per page, so a page may hold fewer
// matches than Limit and still carry a Cursor. ScanAll follows cursors:
//
//	items, err := storage.ScanAll(ctx, store, naming.Usecases("t1"), storage.ScanOptions{
//	    Filter: storage.Eq("documentHash", hash),
//	})
//
// # Conditional writes
//
// PutIfAbsent is the only write the ingestion pipeline uses for new records.
// It returns ErrDuplicateKey when the id is taken, which lets concurrent
// writers retry with a fresh id instead of overwriting each other.
//
// # Encoding
//
// Values are stored as an Envelope encoded with mus-go: a version, the
// collection and id the value was written under, the write time and the
// item's JSON body.
//
// # Thread Safety
//
// All RecordStore implementations must be safe for concurrent use.
package storage
