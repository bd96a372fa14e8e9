package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-report-card/pkg/errors"
)

// RenderCacheRepository stores rendered report card documents in Redis.
// Keys are namespaced with prefix so invalidation never touches foreign keys.
type RenderCacheRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRenderCacheRepository constructs a cache repository. A nil client yields
// a repository that always misses.
func NewRenderCacheRepository(client *redis.Client, prefix string, logger *zap.Logger) *RenderCacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RenderCacheRepository{client: client, prefix: prefix, logger: logger}
}

func (r *RenderCacheRepository) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

// Get returns the cached document stored under key.
func (r *RenderCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		return nil, getError(key, err)
	}
	return raw, nil
}

func getError(key string, err error) error {
	if errors.Is(err, redis.Nil) {
		return appErrors.ErrCacheMiss
	}
	return fmt.Errorf("redis get %s: %w", key, err)
}

// Set stores payload under key for ttl.
func (r *RenderCacheRepository) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Set(ctx, r.key(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// DeleteByPattern removes cached documents matching pattern.
func (r *RenderCacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.client == nil {
		return nil
	}
	iter := r.client.Scan(ctx, 0, r.key(pattern), 0).Iterator()
	removed := 0
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", iter.Val(), err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan pattern %s: %w", pattern, err)
	}
	r.logger.Debug("render cache invalidated", zap.String("pattern", pattern), zap.Int("removed", removed))
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *RenderCacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
