package services

import (
	"context"
	"fmt"
	"time"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/analytics"
	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
	"github.com/wadjakorntonsri/deeplinker/pkg/ports"
)

type AnalyticsService struct {
	repo ports.LinkRepository
	loc  *time.Location
	now  func() time.Time
}

// NewAnalyticsService buckets clicks in loc. A nil loc means UTC.
func NewAnalyticsService(repo ports.LinkRepository, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{repo: repo, loc: loc, now: time.Now}
}

func (s *AnalyticsService) LinkStats(ctx context.Context, slug, rangeToken string) (*domain.LinkStats, error) {
	r, err := analytics.ParseRange(rangeToken, analytics.LinkView)
	if err != nil {
		return nil, err
	}
	link, err := s.repo.GetWithClicks(ctx, slug)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, slug)
	}
	stats := analytics.Summarize(*link, r, s.now().In(s.loc))
	return &stats, nil
}

func (s *AnalyticsService) TagActivity(ctx context.Context, rangeToken string) ([]domain.TagCount, error) {
	r, err := analytics.ParseRange(rangeToken, analytics.TagView)
	if err != nil {
		return nil, err
	}
	links, err := s.repo.ClickTimestamps(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.TagActivity(links, r, s.now().In(s.loc)), nil
}

var _ ports.AnalyticsService = (*AnalyticsService)(nil)
