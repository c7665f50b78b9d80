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
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockPrefix = "usecasegen:lock:"

	DefaultLockTTL      = 30 * time.Second
	DefaultPollInterval = 50 * time.Millisecond
)

// Lock is a named mutex held in Redis with SETNX and a TTL.
// A unique owner ID prevents one instance from releasing another's lock.
type Lock struct {
	client  redis.UniversalClient
	ownerID string
	ttl     time.Duration
	poll    time.Duration
	logger  *slog.Logger
}

// LockOption configures a Lock.
type LockOption func(*Lock)

// WithTTL sets how long an unreleased lock survives its holder.
func WithTTL(ttl time.Duration) LockOption {
	return func(l *Lock) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithPollInterval sets how often a blocked Lock call retries.
func WithPollInterval(d time.Duration) LockOption {
	return func(l *Lock) {
		if d > 0 {
			l.poll = d
		}
	}
}

// NewLock creates a Redis-backed lock with a generated owner ID.
func NewLock(client redis.UniversalClient, opts ...LockOption) *Lock {
	l := &Lock{
		client:  client,
		ownerID: generateOwnerID(),
		ttl:     DefaultLockTTL,
		poll:    DefaultPollInterval,
		logger:  slog.Default().With("component", "redis-lock"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// generateOwnerID creates a unique identifier for this lock holder.
// Format: hostname:pid:random
func generateOwnerID() string {
	hostname, _ := os.Hostname()
	randomBytes := make([]byte, 8)
	_, _ = rand.Read(randomBytes)
	return fmt.Sprintf("%s:%d:%s", hostname, os.Getpid(), hex.EncodeToString(randomBytes))
}

// OwnerID returns the identifier stored as the lock value.
func (l *Lock) OwnerID() string {
	return l.ownerID
}

// TryAcquire attempts to take the named lock once.
// Returns true if acquired, false if another owner holds it.
func (l *Lock) TryAcquire(ctx context.Context, name string) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockPrefix+name, l.ownerID, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	return ok, nil
}

// Lock blocks until the named lock is acquired or ctx is done. The
// returned function releases it.
func (l *Lock) Lock(ctx context.Context, name string) (func(), error) {
	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		ok, err := l.TryAcquire(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.unlock(name) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock %s: %w", name, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Lock) unlock(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.Release(ctx, name); err != nil {
		l.logger.Warn("failed to release lock", "lock", name, "err", err)
	}
}

// releaseScript deletes the lock only if the caller still owns it.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Release releases the named lock if held by this instance.
// Safe to call when the lock is not held or has expired.
func (l *Lock) Release(ctx context.Context, name string) error {
	_, err := releaseScript.Run(ctx, l.client, []string{lockPrefix + name}, l.ownerID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}

// Ping checks if the Redis backend is healthy.
func (l *Lock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
