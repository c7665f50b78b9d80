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

package usecasegen

import (
	"errors"
	"log/slog"

	"github.com/poiesic/usecasegen/ai"
	"github.com/poiesic/usecasegen/ai/openai"
	"github.com/poiesic/usecasegen/ingestion"
	"github.com/poiesic/usecasegen/mcpserver"
	"github.com/poiesic/usecasegen/search"
	"github.com/poiesic/usecasegen/server"
	"github.com/poiesic/usecasegen/storage"
	"github.com/poiesic/usecasegen/storage/badger"
)

// Database bundles the record store and the model provider that every
// entry point needs.
type Database struct {
	store    storage.RecordStore
	provider ai.Provider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	inMemory bool
}

// WithAIConfig sets the model gateway configuration.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithInMemory keeps all records in memory. The file path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	var (
		store storage.RecordStore
		err   error
	)
	if options.inMemory {
		store, err = badger.NewMemoryStore()
	} else {
		store, err = badger.NewStore(filePath)
	}
	if err != nil {
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Database{
		store:    store,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	var errs []error
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing record store", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (db *Database) Store() storage.RecordStore {
	return db.store
}

func (db *Database) Provider() ai.Provider {
	return db.provider
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.store, db.provider, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.store, opts...)
}

// NewServer builds the HTTP API around pipeline.
func (db *Database) NewServer(pipeline *ingestion.Pipeline, opts ...server.Option) (*server.Server, error) {
	return server.New(pipeline, db.store, opts...)
}

func (db *Database) NewMCPServer(opts ...mcpserver.Option) (*mcpserver.Server, error) {
	return mcpserver.NewServer(db.store, opts...)
}
