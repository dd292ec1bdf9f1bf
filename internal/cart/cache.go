package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cart view not in cache")

// ViewCache caches the populated cart view per user. Mutations invalidate;
// a cache failure is never fatal to the request.
type ViewCache interface {
	Get(ctx context.Context, userID string) (*View, error)
	Set(ctx context.Context, userID string, v *View) error
	Delete(ctx context.Context, userID string) error
}

type RedisViewCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisViewCache(client *redis.Client) *RedisViewCache {
	return &RedisViewCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

func (r *RedisViewCache) Get(ctx context.Context, userID string) (*View, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var v View
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("corrupt cached cart view: %w", err)
	}
	return &v, nil
}

func (r *RedisViewCache) Set(ctx context.Context, userID string, v *View) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	// Jitter spreads expiry so a burst of carts does not expire at once.
	ttl := r.baseTTL + time.Duration(rand.Intn(60))*time.Second
	return r.client.Set(ctx, cacheKey(userID), data, ttl).Err()
}

func (r *RedisViewCache) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, cacheKey(userID)).Err()
}

func cacheKey(userID string) string {
	return "cart:view:" + userID
}

// NoopCache is used when no Redis address is configured.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, userID string) (*View, error) { return nil, ErrCacheMiss }
func (NoopCache) Set(ctx context.Context, userID string, v *View) error { return nil }
func (NoopCache) Delete(ctx context.Context, userID string) error       { return nil }
