// Package cache holds LinkCache implementations backed by BigCache or Redis.
package cache

import (
	"encoding/json"
	"time"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
)

const keyPrefix = "link:"

// entry is the immutable part of a link. Counters are never cached.
type entry struct {
	ID        int64      `json:"id"`
	Slug      string     `json:"slug"`
	URL       string     `json:"url"`
	Tag       domain.Tag `json:"tag"`
	CreatedAt int64      `json:"created_at"`
}

func encode(link *domain.Link) ([]byte, error) {
	return json.Marshal(entry{
		ID:        link.ID,
		Slug:      link.Slug,
		URL:       link.URL,
		Tag:       link.Tag,
		CreatedAt: link.CreatedAt.UnixNano(),
	})
}

func decode(data []byte) (*domain.Link, error) {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &domain.Link{
		ID:        e.ID,
		Slug:      e.Slug,
		URL:       e.URL,
		Tag:       e.Tag,
		CreatedAt: unixNano(e.CreatedAt),
	}, nil
}

func unixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
