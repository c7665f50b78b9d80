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
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSConfig selects how the GCS client authenticates.
type GCSConfig struct {
	// EmulatorHost points the client at a storage emulator without auth.
	EmulatorHost string
	// Credentials is a service account JSON document or a path to one.
	Credentials string
}

// GCSStore reads objects from Google Cloud Storage.
type GCSStore struct {
	client  *storage.Client
	maxSize int64
	logger  *slog.Logger
}

var _ Store = (*GCSStore)(nil)

// NewGCSStore creates a read-only GCS client.
func NewGCSStore(ctx context.Context, cfg GCSConfig) (*GCSStore, error) {
	var opts []option.ClientOption
	if host := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"); host != "" {
		// The client library reads the emulator endpoint from the environment.
		if err := os.Setenv("STORAGE_EMULATOR_HOST", host); err != nil {
			return nil, err
		}
		opts = append(opts, option.WithoutAuthentication())
	} else {
		opts = append(opts, credentialOptions(cfg.Credentials)...)
		opts = append(opts, option.WithScopes(storage.ScopeReadOnly))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{
		client:  client,
		maxSize: DefaultMaxObjectSize,
		logger:  slog.Default().With("component", "blob-gcs"),
	}, nil
}

func credentialOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	switch {
	case creds == "":
		return nil
	case strings.HasPrefix(creds, "{"):
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	default:
		return []option.ClientOption{option.WithCredentialsFile(creds)}
	}
}

// Get reads the object named by loc.
func (s *GCSStore) Get(ctx context.Context, loc Locator) ([]byte, error) {
	r, err := s.client.Bucket(loc.Bucket).Object(loc.Key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", loc, err)
	}
	defer r.Close()

	data, err := readLimited(r, s.maxSize)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", loc, err)
	}
	s.logger.Debug("object read", "locator", loc.String(), "bytes", len(data))
	return data, nil
}

// Close releases the client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
