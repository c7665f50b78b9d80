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
	"context"

	"github.com/poiesic/usecasegen/core"
)

// DefaultPageSize bounds the records examined by a scan page when
// ScanOptions.Limit is zero.
const DefaultPageSize = 1000

// ScanOptions narrows and pages a collection scan.
type ScanOptions struct {
	// Filter is applied to every examined record. Nil matches everything.
	Filter Filter
	// Prefix restricts the scan to record ids starting with it.
	Prefix string
	// Limit bounds the records examined (not matched) per page.
	Limit int
	// Cursor resumes a scan after the id returned by a previous page.
	Cursor string
}

// ScanPage is one page of scan results. An empty Cursor means the scan
// reached the end of the collection.
type ScanPage struct {
	Items  []core.Item
	Cursor string
}

// Scanner pages through a collection.
type Scanner interface {
	Scan(ctx context.Context, collection string, opts ScanOptions) (ScanPage, error)
}

// RecordStore is a schemaless key-value store of items grouped into
// named collections and keyed by their id attribute.
//
// Implementations must be safe for concurrent use.
type RecordStore interface {
	Scanner

	// Get returns the item stored under id, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (core.Item, error)

	// Put writes item unconditionally, replacing any existing value.
	Put(ctx context.Context, collection string, item core.Item) error

	// PutIfAbsent writes item only when no item with the same id exists.
	// It returns ErrDuplicateKey otherwise.
	PutIfAbsent(ctx context.Context, collection string, item core.Item) error

	// Close releases the underlying storage.
	Close() error
}

// ScanAll follows scan cursors until the collection is exhausted and
// returns every matching item.
func ScanAll(ctx context.Context, s Scanner, collection string, opts ScanOptions) ([]core.Item, error) {
	var items []core.Item
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := s.Scan(ctx, collection, opts)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if page.Cursor == "" {
			return items, nil
		}
		opts.Cursor = page.Cursor
	}
}
