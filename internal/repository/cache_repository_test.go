package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-report-card/pkg/errors"
)

func TestRenderCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewRenderCacheRepository(nil, "reportcard", nil)
	ctx := context.Background()

	_, err := repo.Get(ctx, "42:2024:csv")
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	require.NoError(t, repo.Set(ctx, "42:2024:csv", []byte("data"), time.Minute))
	require.NoError(t, repo.DeleteByPattern(ctx, "42:2024:*"))
	require.NoError(t, repo.Close())
}

func TestRenderCacheRepositoryKeyPrefix(t *testing.T) {
	assert.Equal(t, "reportcard:42:2024:pdf", NewRenderCacheRepository(nil, "reportcard", nil).key("42:2024:pdf"))
	assert.Equal(t, "42:2024:pdf", NewRenderCacheRepository(nil, "", nil).key("42:2024:pdf"))
}

func TestRenderCacheRepositoryGetErrorMapping(t *testing.T) {
	assert.Same(t, appErrors.ErrCacheMiss, getError("42:2024:csv", redis.Nil))
	assert.True(t, errors.Is(getError("42:2024:csv", fmt.Errorf("pipeline: %w", redis.Nil)), appErrors.ErrCacheMiss))

	backend := errors.New("connection reset")
	err := getError("42:2024:csv", backend)
	assert.True(t, errors.Is(err, backend))
	assert.False(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.Contains(t, err.Error(), "redis get 42:2024:csv")
}

func TestRenderCacheRepositoryUnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	repo := NewRenderCacheRepository(client, "reportcard", nil)
	t.Cleanup(func() { _ = repo.Close() })
	ctx := context.Background()

	_, err := repo.Get(ctx, "42:2024:rev:csv")
	require.Error(t, err)
	assert.False(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.Contains(t, err.Error(), "redis get")

	err = repo.Set(ctx, "42:2024:rev:csv", []byte("data"), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set")

	err = repo.DeleteByPattern(ctx, "42:2024:*")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis scan pattern 42:2024:*")
}
