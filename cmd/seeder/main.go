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

package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/usecasegen/core"
	"github.com/poiesic/usecasegen/storage"
	"github.com/poiesic/usecasegen/storage/badger"
)

//go:embed seed.yaml
var defaultSeed []byte

var (
	dbPath    = flag.String("db", "./usecase_db", "path to BadgerDB database directory")
	seedFile  = flag.String("src", "", "YAML file of seed data (embedded defaults when empty)")
	stage     = flag.String("stage", storage.DefaultStage, "deployment stage used in collection names")
	app       = flag.String("app", storage.DefaultApp, "application name used in collection names")
	overwrite = flag.Bool("overwrite", false, "replace records that already exist")
)

// seedData is the reference data the pipeline reads while generating.
type seedData struct {
	Frameworks         []core.Item `yaml:"frameworks"`
	MethodologyMapping []core.Item `yaml:"methodologyMetricsMapping"`
}

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

func parseSeed(src []byte) (*seedData, error) {
	var data seedData
	if err := yaml.Unmarshal(src, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	for _, items := range [][]core.Item{data.Frameworks, data.MethodologyMapping} {
		for i, item := range items {
			if strings.TrimSpace(item.ID()) == "" {
				return nil, fmt.Errorf("seed record %d has no id", i)
			}
		}
	}
	return &data, nil
}

// seed writes items into collection and returns how many were written.
// Existing records are kept unless replace is set.
func seed(ctx context.Context, store storage.RecordStore, collection string, items []core.Item, replace bool) (int, error) {
	written := 0
	for _, item := range items {
		var err error
		if replace {
			err = store.Put(ctx, collection, item)
		} else {
			err = store.PutIfAbsent(ctx, collection, item)
		}
		if errors.Is(err, storage.ErrDuplicateKey) {
			slog.Info("record exists, skipping", "collection", collection, "id", item.ID())
			continue
		}
		if err != nil {
			return written, fmt.Errorf("write %s/%s: %w", collection, item.ID(), err)
		}
		written++
	}
	return written, nil
}

func run(ctx context.Context) error {
	src := defaultSeed
	if *seedFile != "" {
		var err error
		if src, err = os.ReadFile(*seedFile); err != nil {
			return err
		}
	}
	data, err := parseSeed(src)
	if err != nil {
		return err
	}

	store, err := badger.NewStore(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	naming := storage.Naming{Stage: *stage, App: *app}.WithDefaults()
	targets := []struct {
		collection string
		items      []core.Item
	}{
		{naming.Frameworks(), data.Frameworks},
		{naming.MethodologyMapping(), data.MethodologyMapping},
	}
	for _, target := range targets {
		n, err := seed(ctx, store, target.collection, target.items, *overwrite)
		if err != nil {
			return err
		}
		slog.Info("seeded collection", "collection", target.collection, "written", n, "total", len(target.items))
	}
	return nil
}

func main() {
	flag.Parse()
	if err := run(context.Background()); err != nil {
		slog.Error("seeding failed", "err", err)
		os.Exit(1)
	}
}
