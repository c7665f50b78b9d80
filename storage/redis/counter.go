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

package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const counterPrefix = "usecasegen:seq:"

// SeedFunc returns the highest numeric id suffix already used for prefix
// in collection. It runs once per counter key.
type SeedFunc func(ctx context.Context, collection, prefix string) (int64, error)

// Counter allocates sequential record ids from an atomic Redis counter.
type Counter struct {
	client redis.UniversalClient
	seed   SeedFunc
	logger *slog.Logger
}

// NewCounter creates a Counter seeded from existing records by seed.
func NewCounter(client redis.UniversalClient, seed SeedFunc) *Counter {
	return &Counter{
		client: client,
		seed:   seed,
		logger: slog.Default().With("component", "redis-counter"),
	}
}

func counterKey(collection, prefix string) string {
	return counterPrefix + collection + ":" + prefix
}

// Next returns prefix followed by the next counter value, zero padded to
// three digits.
func (c *Counter) Next(ctx context.Context, collection, prefix string) (string, error) {
	key := counterKey(collection, prefix)

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("counter %s: %w", key, err)
	}
	if exists == 0 {
		if err := c.initialize(ctx, key, collection, prefix); err != nil {
			return "", err
		}
	}

	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("counter %s: %w", key, err)
	}
	return fmt.Sprintf("%s%03d", prefix, n), nil
}

// initialize seeds the counter with SETNX so concurrent first callers agree
// on a single starting value.
func (c *Counter) initialize(ctx context.Context, key, collection, prefix string) error {
	var start int64
	if c.seed != nil {
		max, err := c.seed(ctx, collection, prefix)
		if err != nil {
			return fmt.Errorf("seed counter %s: %w", key, err)
		}
		start = max
	}
	set, err := c.client.SetNX(ctx, key, start, 0).Result()
	if err != nil {
		return fmt.Errorf("seed counter %s: %w", key, err)
	}
	if set {
		c.logger.Info("counter seeded", "key", key, "start", start)
	}
	return nil
}

// Reset deletes the counter so the next call reseeds it.
func (c *Counter) Reset(ctx context.Context, collection, prefix string) error {
	return c.client.Del(ctx, counterKey(collection, prefix)).Err()
}
