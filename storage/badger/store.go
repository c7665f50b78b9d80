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
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/usecasegen/core"
	"github.com/poiesic/usecasegen/storage"
)

// Store is a storage.RecordStore backed by BadgerDB.
type Store struct {
	backend *Backend
	logger  *slog.Logger
	now     func() time.Time
}

var _ storage.RecordStore = (*Store)(nil)

// NewStore opens (or creates) a Badger record store in dir.
func NewStore(dir string) (storage.RecordStore, error) {
	backend, err := OpenBackend(dir, false)
	if err != nil {
		return nil, err
	}
	return newStore(backend), nil
}

func newStore(backend *Backend) *Store {
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "record-store"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.backend.IsClosed() {
		return nil
	}
	return s.backend.Close()
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

// Get returns the item stored under id in collection.
func (s *Store) Get(ctx context.Context, collection, id string) (core.Item, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var item core.Item
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := tx.Get(makeRecordKey(collection, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return entry.Value(func(val []byte) error {
			var env storage.Envelope
			item, env, err = storage.UnmarshalItem(val)
			if err != nil {
				return err
			}
			if env.Collection != collection {
				return storage.ErrNotFound
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Put writes item, replacing any existing value with the same id.
func (s *Store) Put(ctx context.Context, collection string, item core.Item) error {
	return s.write(ctx, collection, item, false)
}

// PutIfAbsent writes item only when its id is unused in collection.
func (s *Store) PutIfAbsent(ctx context.Context, collection string, item core.Item) error {
	return s.write(ctx, collection, item, true)
}

func (s *Store) write(ctx context.Context, collection string, item core.Item, conditional bool) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	value, err := storage.MarshalItem(collection, item, s.now())
	if err != nil {
		return err
	}
	key := makeRecordKey(collection, item.ID())

	err = s.backend.WithTx(func(tx *badger.Txn) error {
		if conditional {
			_, err := tx.Get(key)
			if err == nil {
				return storage.ErrDuplicateKey
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrDuplicateKey):
		return err
	case conditional && errors.Is(err, badger.ErrConflict):
		// A concurrent transaction wrote the same key first.
		return storage.ErrDuplicateKey
	default:
		s.logger.Error("write failed", "collection", collection, "id", item.ID(), "err", err)
		return fmt.Errorf("%w: %v", storage.ErrTransactionFailed, err)
	}
}

// Scan returns one page of collection in id order.
func (s *Store) Scan(ctx context.Context, collection string, opts storage.ScanOptions) (storage.ScanPage, error) {
	if err := s.check(ctx); err != nil {
		return storage.ScanPage{}, err
	}
	if opts.Limit < 0 {
		return storage.ScanPage{}, fmt.Errorf("%w: negative limit", storage.ErrInvalidQuery)
	}
	limit := opts.Limit
	if limit == 0 {
		limit = storage.DefaultPageSize
	}

	prefix := makeRecordKey(collection, opts.Prefix)
	start := prefix
	var cursorKey []byte
	if opts.Cursor != "" {
		cursorKey = makeRecordKey(collection, opts.Cursor)
		if bytes.Compare(cursorKey, prefix) > 0 {
			start = cursorKey
		}
	}

	var page storage.ScanPage
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		iter := tx.NewIterator(iterOpts)
		defer iter.Close()

		examined := 0
		lastID := ""
		for iter.Seek(start); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry := iter.Item()
			key := entry.Key()
			if cursorKey != nil && bytes.Equal(key, cursorKey) {
				continue
			}
			if examined == limit {
				page.Cursor = lastID
				break
			}
			examined++
			lastID = idFromKey(key)

			err := entry.Value(func(val []byte) error {
				item, env, err := storage.UnmarshalItem(val)
				if err != nil {
					return err
				}
				// Digest collisions across collections are filtered here.
				if env.Collection != collection {
					return nil
				}
				if storage.Matches(opts.Filter, item) {
					page.Items = append(page.Items, item)
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("decode %s/%s: %w", collection, lastID, err)
			}
		}
		return nil
	}, false)
	if err != nil {
		return storage.ScanPage{}, err
	}
	return page, nil
}
