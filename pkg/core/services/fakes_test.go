package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
)

// memRepo is an in-memory LinkRepository and UserRepository
type memRepo struct {
	mu      sync.Mutex
	links   map[string]*domain.Link
	users   map[string]*domain.User
	nextID  int64
	gets    int
	failGet error
}

func newMemRepo() *memRepo {
	return &memRepo{links: map[string]*domain.Link{}, users: map[string]*domain.User{}}
}

func (m *memRepo) Create(_ context.Context, link *domain.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.Slug]; ok {
		return fmt.Errorf("%w: %s", domain.ErrConflict, link.Slug)
	}
	m.nextID++
	link.ID = m.nextID
	cp := *link
	m.links[link.Slug] = &cp
	return nil
}

func (m *memRepo) GetBySlug(_ context.Context, slug string) (*domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failGet != nil {
		return nil, m.failGet
	}
	l, ok := m.links[slug]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (m *memRepo) GetWithClicks(ctx context.Context, slug string) (*domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[slug]
	if !ok {
		return nil, nil
	}
	cp := *l
	cp.ClickTimestamps = append([]time.Time{}, l.ClickTimestamps...)
	cp.ClicksInfo = append([]domain.ClickEvent{}, l.ClicksInfo...)
	return &cp, nil
}

func (m *memRepo) List(_ context.Context) ([]domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Link{}
	for _, l := range m.links {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memRepo) DeleteBySlug(_ context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.links, slug)
	return nil
}

func (m *memRepo) RecordClick(_ context.Context, slug string, event domain.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[slug]
	if !ok {
		return nil
	}
	l.Clicks++
	l.ClickTimestamps = append(l.ClickTimestamps, event.Timestamp)
	l.ClicksInfo = append(l.ClicksInfo, event)
	return nil
}

func (m *memRepo) ClickTimestamps(_ context.Context) ([]domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Link{}
	for _, l := range m.links {
		out = append(out, domain.Link{ID: l.ID, Slug: l.Slug, Tag: l.Tag, Clicks: l.Clicks, ClickTimestamps: l.ClickTimestamps})
	}
	return out, nil
}

func (m *memRepo) Dump(ctx context.Context) ([]domain.Link, error) { return m.List(ctx) }

func (m *memRepo) Import(ctx context.Context, link *domain.Link) error { return m.Create(ctx, link) }

func (m *memRepo) Ping(context.Context) error { return nil }

func (m *memRepo) Close() error { return nil }

func (m *memRepo) clicks(slug string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.links[slug]; ok {
		return l.Clicks
	}
	return 0
}

func (m *memRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return domain.ErrConflict
	}
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.users[user.Email] = &cp
	return nil
}

func (m *memRepo) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			u.LastLoginAt = at
		}
	}
	return nil
}

// memCache is a map backed LinkCache
type memCache struct {
	mu    sync.Mutex
	items map[string]domain.Link
}

func newMemCache() *memCache { return &memCache{items: map[string]domain.Link{}} }

func (c *memCache) Get(_ context.Context, slug string) (*domain.Link, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.items[slug]
	if !ok {
		return nil, false
	}
	return &l, true
}

func (c *memCache) Set(_ context.Context, link *domain.Link) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[link.Slug] = *link
	return nil
}

func (c *memCache) Delete(_ context.Context, slug string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, slug)
	return nil
}

func (c *memCache) Close() error { return nil }
