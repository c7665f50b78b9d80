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

package badger

import (
	"github.com/go-crypt/x/blake2b"
)

const (
	recordPrefix = "rec"
	// collectionHashSize is the width of the collection component of a key.
	collectionHashSize = 8
)

// collectionHash returns a fixed-width 64-bit digest of a collection name.
func collectionHash(collection string) []byte {
	h, _ := blake2b.New(collectionHashSize, nil)
	h.Write([]byte(collection))
	return h.Sum(nil)
}

// makeRecordKey generates the key for a record.
// Format: prefix + blake2b-64(collection) + id
func makeRecordKey(collection, id string) []byte {
	buf := make([]byte, 0, len(recordPrefix)+collectionHashSize+len(id))
	buf = append(buf, recordPrefix...)
	buf = append(buf, collectionHash(collection)...)
	return append(buf, id...)
}

// idFromKey extracts the record id from a key built by makeRecordKey.
func idFromKey(key []byte) string {
	offset := len(recordPrefix) + collectionHashSize
	if len(key) < offset {
		return ""
	}
	return string(key[offset:])
}
