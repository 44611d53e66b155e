package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/breakout"
	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
	"github.com/wadjakorntonsri/deeplinker/pkg/core/useragent"
)

// Action is what the redirect endpoint does with a visitor
type Action int

const (
	ActionRedirect Action = iota
	ActionBreakout
)

func (a Action) String() string {
	if a == ActionBreakout {
		return "breakout"
	}
	return "redirect"
}

// BreakoutPolicy chooses which non-bot visitors get the breakout page
type BreakoutPolicy string

const (
	// PolicyAll sends every non-bot visitor through the breakout page
	PolicyAll BreakoutPolicy = "all"
	// PolicyInApp only breaks out of detected in-app browsers
	PolicyInApp BreakoutPolicy = "in-app"
)

// ParseBreakoutPolicy falls back to PolicyAll for unknown values
func ParseBreakoutPolicy(s string) BreakoutPolicy {
	if BreakoutPolicy(strings.ToLower(strings.TrimSpace(s))) == PolicyInApp {
		return PolicyInApp
	}
	return PolicyAll
}

// RedirectOptions tunes the orchestration of a visit
type RedirectOptions struct {
	Policy     BreakoutPolicy
	RecordBots bool
	// SyncRecording stores the click before answering, for runtimes that
	// freeze background work once the response is sent.
	SyncRecording bool
}

// Decision is the outcome of a visit
type Decision struct {
	Action         Action
	Link           *domain.Link
	Classification useragent.Classification
	Plan           breakout.Plan
}

// resolver is the part of LinkService the redirect path needs
type resolver interface {
	Resolve(ctx context.Context, slug string) (*domain.Link, error)
}

type RedirectService struct {
	links    resolver
	recorder *ClickRecorder
	opts     RedirectOptions
	now      func() time.Time
}

func NewRedirectService(links resolver, recorder *ClickRecorder, opts RedirectOptions) *RedirectService {
	if opts.Policy == "" {
		opts.Policy = PolicyAll
	}
	return &RedirectService{links: links, recorder: recorder, opts: opts, now: time.Now}
}

// Visit resolves the slug, records the click and decides how to answer.
// Only a missing link or a store failure on lookup is returned as an error.
func (s *RedirectService) Visit(ctx context.Context, v domain.Visit) (*Decision, error) {
	link, err := s.links.Resolve(ctx, v.Slug)
	if err != nil {
		return nil, err
	}
	if v.At.IsZero() {
		v.At = s.now().UTC()
	}

	if s.opts.RecordBots {
		s.record(ctx, v)
	}

	c := useragent.Classify(v.UserAgent)
	if !s.opts.RecordBots && !c.IsBot {
		s.record(ctx, v)
	}

	d := &Decision{Action: s.decide(c), Link: link, Classification: c}
	if d.Action == ActionBreakout {
		d.Plan = breakout.NewPlan(link.URL, breakout.DetectPlatform(v.UserAgent))
	}
	log.Printf("[redirect] %s visitor=%s action=%s", v.Slug, c.Kind(), d.Action)
	return d, nil
}

func (s *RedirectService) decide(c useragent.Classification) Action {
	if c.IsBot {
		return ActionRedirect
	}
	if s.opts.Policy == PolicyInApp && !c.IsInAppBrowser {
		return ActionRedirect
	}
	return ActionBreakout
}

func (s *RedirectService) record(ctx context.Context, v domain.Visit) {
	if s.recorder == nil {
		return
	}
	if s.opts.SyncRecording {
		_ = s.recorder.Record(ctx, v)
		return
	}
	s.recorder.Go(ctx, v)
}

// String is used in startup logs
func (o RedirectOptions) String() string {
	mode := "async"
	if o.SyncRecording {
		mode = "sync"
	}
	return fmt.Sprintf("policy=%s record_bots=%t recording=%s", o.Policy, o.RecordBots, mode)
}
