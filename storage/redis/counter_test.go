package redis

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_Next(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	seeds := 0
	counter := NewCounter(client, func(ctx context.Context, collection, prefix string) (int64, error) {
		seeds++
		return 7, nil
	})

	id, err := counter.Next(ctx, "coll", "AI-UC-AST-")
	require.NoError(t, err)
	assert.Equal(t, "AI-UC-AST-008", id)

	id, err = counter.Next(ctx, "coll", "AI-UC-AST-")
	require.NoError(t, err)
	assert.Equal(t, "AI-UC-AST-009", id)

	assert.Equal(t, 1, seeds)

	id, err = counter.Next(ctx, "other", "AI-UC-AST-")
	require.NoError(t, err)
	assert.Equal(t, "AI-UC-AST-008", id)
	assert.Equal(t, 2, seeds)
}

func TestCounter_NoSeed(t *testing.T) {
	_, client := setupTestRedis(t)

	counter := NewCounter(client, nil)
	id, err := counter.Next(context.Background(), "coll", "X-")
	require.NoError(t, err)
	assert.Equal(t, "X-001", id)
}

func TestCounter_SeedError(t *testing.T) {
	_, client := setupTestRedis(t)
	boom := errors.New("scan failed")

	counter := NewCounter(client, func(context.Context, string, string) (int64, error) {
		return 0, boom
	})
	_, err := counter.Next(context.Background(), "coll", "X-")
	assert.ErrorIs(t, err, boom)
}

func TestCounter_ConcurrentUnique(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	counter := NewCounter(client, func(context.Context, string, string) (int64, error) { return 0, nil })

	const n = 20
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[string]bool{}
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := counter.Next(ctx, "coll", "AI-UC-AST-")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, n)
	assert.True(t, ids["AI-UC-AST-001"])
	assert.True(t, ids["AI-UC-AST-020"])
}

func TestCounter_Reset(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	start := int64(0)
	counter := NewCounter(client, func(context.Context, string, string) (int64, error) { return start, nil })

	_, err := counter.Next(ctx, "coll", "X-")
	require.NoError(t, err)

	start = 41
	require.NoError(t, counter.Reset(ctx, "coll", "X-"))
	id, err := counter.Next(ctx, "coll", "X-")
	require.NoError(t, err)
	assert.Equal(t, "X-042", id)
}
