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

package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/usecasegen/core"
)

// EnvelopeVersion is the current envelope layout.
const EnvelopeVersion uint64 = 1

// Envelope wraps a stored item with its placement and write time.
// Body is the JSON encoding of the item.
type Envelope struct {
	Version    uint64
	Collection string
	ID         string
	StoredAt   time.Time
	Body       string
}

// MarshalEnvelope serializes an Envelope to bytes.
func MarshalEnvelope(e Envelope) []byte {
	storedAt := e.StoredAt.UnixMicro()
	size := varint.Uint64.Size(e.Version) +
		ord.String.Size(e.Collection) +
		ord.String.Size(e.ID) +
		varint.Int64.Size(storedAt) +
		ord.String.Size(e.Body)

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(e.Version, buf)
	n += ord.String.Marshal(e.Collection, buf[n:])
	n += ord.String.Marshal(e.ID, buf[n:])
	n += varint.Int64.Marshal(storedAt, buf[n:])
	ord.String.Marshal(e.Body, buf[n:])
	return buf
}

// UnmarshalEnvelope deserializes an Envelope from bytes.
func UnmarshalEnvelope(data []byte) (Envelope, error) {
	var (
		e        Envelope
		storedAt int64
		n, m     int
		err      error
	)
	if e.Version, m, err = varint.Uint64.Unmarshal(data); err != nil {
		return Envelope{}, fmt.Errorf("%w: version: %v", ErrSerializationFailed, err)
	}
	n += m
	if e.Version != EnvelopeVersion {
		return Envelope{}, fmt.Errorf("%w: unsupported envelope version %d", ErrSerializationFailed, e.Version)
	}
	if e.Collection, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return Envelope{}, fmt.Errorf("%w: collection: %v", ErrSerializationFailed, err)
	}
	n += m
	if e.ID, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return Envelope{}, fmt.Errorf("%w: id: %v", ErrSerializationFailed, err)
	}
	n += m
	if storedAt, m, err = varint.Int64.Unmarshal(data[n:]); err != nil {
		return Envelope{}, fmt.Errorf("%w: storedAt: %v", ErrSerializationFailed, err)
	}
	n += m
	if e.Body, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return Envelope{}, fmt.Errorf("%w: body: %v", ErrSerializationFailed, err)
	}
	n += m
	if n != len(data) {
		return Envelope{}, fmt.Errorf("%w: %d trailing bytes", ErrTruncatedData, len(data)-n)
	}
	e.StoredAt = time.UnixMicro(storedAt).UTC()
	return e, nil
}

// MarshalItem encodes item into an envelope for collection.
func MarshalItem(collection string, item core.Item, storedAt time.Time) ([]byte, error) {
	id := item.ID()
	if id == "" {
		return nil, ErrMissingID
	}
	body, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return MarshalEnvelope(Envelope{
		Version:    EnvelopeVersion,
		Collection: collection,
		ID:         id,
		StoredAt:   storedAt,
		Body:       string(body),
	}), nil
}

// UnmarshalItem decodes an envelope and its item. Numbers are decoded as
// json.Number so decimals round-trip exactly.
func UnmarshalItem(data []byte) (core.Item, Envelope, error) {
	e, err := UnmarshalEnvelope(data)
	if err != nil {
		return nil, Envelope{}, err
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(e.Body)))
	dec.UseNumber()
	var item core.Item
	if err := dec.Decode(&item); err != nil {
		return nil, Envelope{}, fmt.Errorf("%w: body: %v", ErrSerializationFailed, err)
	}
	return item, e, nil
}
