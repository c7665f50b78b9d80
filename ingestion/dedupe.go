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
	"log/slog"

	"github.com/poiesic/usecasegen/core"
	"github.com/poiesic/usecasegen/storage"
)

// IsDuplicate reports whether collection already holds a record with
// documentHash hash, and that record's id. A scan failure is logged and
// treated as not a duplicate.
func IsDuplicate(ctx context.Context, store storage.Scanner, collection, hash string) (string, bool) {
	if hash == "" {
		return "", false
	}
	logger := slog.Default().With("component", "dedupe")

	opts := storage.ScanOptions{Filter: storage.Eq(core.FieldDocumentHash, hash)}
	for {
		page, err := store.Scan(ctx, collection, opts)
		if err != nil {
			logger.Warn("could not check for duplicates", "collection", collection, "err", err)
			return "", false
		}
		if len(page.Items) > 0 {
			return page.Items[0].ID(), true
		}
		if page.Cursor == "" {
			return "", false
		}
		opts.Cursor = page.Cursor
	}
}
