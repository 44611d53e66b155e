package cache

import (
	"context"
	"log"
	"time"

	"github.com/allegro/bigcache"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
	"github.com/wadjakorntonsri/deeplinker/pkg/ports"
)

// BigCacheStore is an in-process LinkCache
type BigCacheStore struct {
	cache *bigcache.BigCache
}

// NewBigCacheStore initializes a new BigCacheStore whose entries live for ttl
func NewBigCacheStore(ttl time.Duration) (*BigCacheStore, error) {
	config := bigcache.Config{
		Shards:           1024,
		LifeWindow:       ttl,
		CleanWindow:      ttl / 2,
		MaxEntrySize:     500,
		HardMaxCacheSize: 64, // MB
		Verbose:          false,
	}
	bc, err := bigcache.NewBigCache(config)
	if err != nil {
		return nil, err
	}
	return &BigCacheStore{cache: bc}, nil
}

func (b *BigCacheStore) Get(_ context.Context, slug string) (*domain.Link, bool) {
	data, err := b.cache.Get(keyPrefix + slug)
	if err != nil {
		// ErrEntryNotFound and anything else are both a miss
		return nil, false
	}
	link, err := decode(data)
	if err != nil {
		log.Printf("[cache] dropping corrupt entry for %s: %v", slug, err)
		_ = b.cache.Delete(keyPrefix + slug)
		return nil, false
	}
	return link, true
}

func (b *BigCacheStore) Set(_ context.Context, link *domain.Link) error {
	data, err := encode(link)
	if err != nil {
		return err
	}
	return b.cache.Set(keyPrefix+link.Slug, data)
}

func (b *BigCacheStore) Delete(_ context.Context, slug string) error {
	err := b.cache.Delete(keyPrefix + slug)
	if err == bigcache.ErrEntryNotFound {
		return nil
	}
	return err
}

// Close releases the shards' cleanup goroutine
func (b *BigCacheStore) Close() error {
	return b.cache.Close()
}

var _ ports.LinkCache = (*BigCacheStore)(nil)
