package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
	"golang.org/x/sync/singleflight"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
	"github.com/wadjakorntonsri/deeplinker/pkg/ports"
)

const (
	slugAlphabet    = "0123456789abcdefghijklmnopqrstuvwxyz"
	slugLength      = 6
	slugGenAttempts = 5
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,20}$`)

type LinkService struct {
	repo    ports.LinkRepository
	cache   ports.LinkCache // optional
	sfGroup singleflight.Group
	newSlug func() string
	now     func() time.Time
}

// NewLinkService wires the link use cases. cache may be nil.
func NewLinkService(repo ports.LinkRepository, cache ports.LinkCache) (*LinkService, error) {
	gen, err := nanoid.CustomASCII(slugAlphabet, slugLength)
	if err != nil {
		return nil, err
	}
	return &LinkService{repo: repo, cache: cache, newSlug: gen, now: time.Now}, nil
}

// Shorten validates input and stores a new link. An empty slug is generated.
func (s *LinkService) Shorten(ctx context.Context, rawURL, slug, tag string) (*domain.Link, error) {
	dest, err := validateURL(rawURL)
	if err != nil {
		return nil, err
	}

	t, ok := domain.ParseTag(tag)
	if !ok {
		return nil, fmt.Errorf("%w: unknown tag %q", domain.ErrValidation, tag)
	}

	slug = strings.TrimSpace(slug)
	if slug != "" {
		if !slugPattern.MatchString(slug) {
			return nil, fmt.Errorf("%w: slug must be 1-%d letters, digits, '-' or '_'", domain.ErrValidation, domain.MaxSlugLength)
		}
		link := s.newLink(dest, slug, t)
		if err := s.repo.Create(ctx, link); err != nil {
			return nil, err
		}
		log.Printf("[links] created %s -> %s", link.Slug, link.URL)
		return link, nil
	}

	for attempt := 0; attempt < slugGenAttempts; attempt++ {
		link := s.newLink(dest, s.newSlug(), t)
		err := s.repo.Create(ctx, link)
		if err == nil {
			log.Printf("[links] created %s -> %s", link.Slug, link.URL)
			return link, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		log.Printf("[links] generated slug %s collided, retrying", link.Slug)
	}
	return nil, fmt.Errorf("could not generate a free slug after %d attempts", slugGenAttempts)
}

func (s *LinkService) newLink(dest, slug string, tag domain.Tag) *domain.Link {
	return &domain.Link{
		URL:             dest,
		Slug:            slug,
		Tag:             tag,
		ClickTimestamps: []time.Time{},
		ClicksInfo:      []domain.ClickEvent{},
		CreatedAt:       s.now().UTC(),
	}
}

func validateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: url is required", domain.ErrValidation)
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: url must be absolute", domain.ErrValidation)
	}
	// the breakout page navigates to the destination from script
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: url must use http or https", domain.ErrValidation)
	}
	return raw, nil
}

// Resolve returns the link for slug, read through the cache. Counters on the
// result may be stale; only the immutable fields are meant to be used.
func (s *LinkService) Resolve(ctx context.Context, slug string) (*domain.Link, error) {
	if s.cache != nil {
		if link, ok := s.cache.Get(ctx, slug); ok {
			return link, nil
		}
	}

	val, err, _ := s.sfGroup.Do(slug, func() (any, error) {
		return s.repo.GetBySlug(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	link, _ := val.(*domain.Link)
	if link == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, slug)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, link); err != nil {
			log.Printf("[links] warning: failed to cache %s: %v", slug, err)
		}
	}
	return link, nil
}

// GetLink loads a link with its full click history
func (s *LinkService) GetLink(ctx context.Context, slug string) (*domain.Link, error) {
	link, err := s.repo.GetWithClicks(ctx, slug)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, slug)
	}
	return link, nil
}

// ListLinks returns every link, newest first
func (s *LinkService) ListLinks(ctx context.Context) ([]domain.Link, error) {
	return s.repo.List(ctx)
}

// DeleteLink removes a link and its clicks. Deleting a missing slug is not an error.
func (s *LinkService) DeleteLink(ctx context.Context, slug string) error {
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, slug); err != nil {
			log.Printf("[links] warning: failed to evict %s: %v", slug, err)
		}
	}
	log.Printf("[links] deleted %s", slug)
	return nil
}

var _ ports.LinkService = (*LinkService)(nil)
