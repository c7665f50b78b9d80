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

package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore serves objects from <root>/<bucket>/<key>.
type FileStore struct {
	root    string
	maxSize int64
	logger  *slog.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		root:    dir,
		maxSize: DefaultMaxObjectSize,
		logger:  slog.Default().With("component", "blob-file"),
	}
}

// Get reads the object named by loc.
func (s *FileStore) Get(ctx context.Context, loc Locator) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel := filepath.Join(loc.Bucket, filepath.FromSlash(loc.Key))
	if !filepath.IsLocal(rel) {
		return nil, fmt.Errorf("%w: %s escapes the store root", ErrInvalidLocator, loc)
	}

	f, err := os.Open(filepath.Join(s.root, rel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := readLimited(f, s.maxSize)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", loc, err)
	}
	s.logger.Debug("object read", "locator", loc.String(), "bytes", len(data))
	return data, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}
