package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
	"github.com/wadjakorntonsri/deeplinker/pkg/ports"
)

// RedisStore is a LinkCache shared between instances
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects using a redis:// URL and pings the server
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return &RedisStore{client: rdb, ttl: ttl}, nil
}

func (r *RedisStore) Get(ctx context.Context, slug string) (*domain.Link, bool) {
	data, err := r.client.Get(ctx, keyPrefix+slug).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.Printf("[cache] redis get %s: %v", slug, err)
		return nil, false
	}
	link, err := decode(data)
	if err != nil {
		log.Printf("[cache] dropping corrupt entry for %s: %v", slug, err)
		return nil, false
	}
	return link, true
}

func (r *RedisStore) Set(ctx context.Context, link *domain.Link) error {
	data, err := encode(link)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+link.Slug, data, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, slug string) error {
	return r.client.Del(ctx, keyPrefix+slug).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ ports.LinkCache = (*RedisStore)(nil)
