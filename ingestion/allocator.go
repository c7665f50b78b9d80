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

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/usecasegen/storage"
)

// Allocator hands out record ids.
type Allocator interface {
	Next(ctx context.Context, collection, prefix string) (string, error)
}

// ScanAllocator derives the next id from the highest existing one.
//
// It is a read-then-compute allocator: two writers may compute the same id.
// The pipeline detects that through PutIfAbsent and allocates again.
type ScanAllocator struct {
	store  storage.Scanner
	now    func() time.Time
	logger *slog.Logger
}

var _ Allocator = (*ScanAllocator)(nil)

// NewScanAllocator creates a ScanAllocator over store.
func NewScanAllocator(store storage.Scanner) *ScanAllocator {
	return &ScanAllocator{
		store:  store,
		now:    time.Now,
		logger: slog.Default().With("component", "id-allocator"),
	}
}

// MaxSuffix returns the largest numeric suffix among ids starting with
// prefix, or 0 when there are none. Non-numeric suffixes are skipped.
func (a *ScanAllocator) MaxSuffix(ctx context.Context, collection, prefix string) (int64, error) {
	items, err := storage.ScanAll(ctx, a.store, collection, storage.ScanOptions{Prefix: prefix})
	if err != nil {
		return 0, err
	}

	var max int64
	for _, item := range items {
		suffix, ok := strings.CutPrefix(item.ID(), prefix)
		if !ok || !isDigits(suffix) {
			continue
		}
		n, err := strconv.ParseInt(suffix, 10, 64)
		if err != nil {
			a.logger.Warn("skipping id with oversized suffix", "id", item.ID())
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

// Next returns prefix followed by max+1, zero padded to three digits. When
// the scan fails it returns prefix followed by the current unix time.
func (a *ScanAllocator) Next(ctx context.Context, collection, prefix string) (string, error) {
	max, err := a.MaxSuffix(ctx, collection, prefix)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		id := fmt.Sprintf("%s%d", prefix, a.now().Unix())
		a.logger.Error("id scan failed, using timestamp id", "collection", collection, "id", id, "err", err)
		return id, nil
	}
	id := fmt.Sprintf("%s%03d", prefix, max+1)
	a.logger.Debug("allocated id", "collection", collection, "id", id)
	return id, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
