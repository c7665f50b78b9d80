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

// Package badger implements storage.RecordStore on BadgerDB.
//
// Every record lives under a single key:
//
//	"rec" + blake2b-64(collection) + id
//
// The fixed-width collection digest keeps all records of a collection
// contiguous, so a collection scan and an id-prefix scan are both plain
// Badger prefix iterations in id order. The stored value is a
// storage.Envelope which repeats the collection name; scans drop entries
// whose envelope names a different collection.
//
// PutIfAbsent reads and writes the key in one read-write transaction.
// Badger's optimistic concurrency turns a concurrent write of the same key
// into badger.ErrConflict at commit, which is reported as
// storage.ErrDuplicateKey.
//
// Use NewMemoryStore in tests.
package badger
