package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
	"github.com/wadjakorntonsri/deeplinker/pkg/core/geo"
	"github.com/wadjakorntonsri/deeplinker/pkg/ports"
)

// DefaultRecordTimeout bounds one detached enrich and store round trip
const DefaultRecordTimeout = 10 * time.Second

// ClickRecorder enriches visits and appends them to the click history.
// Failures are logged and reported, never returned to the visitor.
type ClickRecorder struct {
	repo     ports.LinkRepository
	enricher *geo.Enricher
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewClickRecorder(repo ports.LinkRepository, enricher *geo.Enricher, timeout time.Duration) *ClickRecorder {
	if enricher == nil {
		enricher = geo.NewEnricher(nil)
	}
	if timeout <= 0 {
		timeout = DefaultRecordTimeout
	}
	return &ClickRecorder{repo: repo, enricher: enricher, timeout: timeout}
}

// Record enriches and stores one click synchronously
func (r *ClickRecorder) Record(ctx context.Context, v domain.Visit) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	loc := r.enricher.Enrich(ctx, v.Network)
	event := domain.NewClickEvent(v.At, loc)
	if err := r.repo.RecordClick(ctx, v.Slug, event); err != nil {
		err = fmt.Errorf("record click on %s: %w", v.Slug, err)
		log.Printf("[clicks] %v", err)
		sentry.CaptureException(err)
		return err
	}
	return nil
}

// Go records the click in the background. The task outlives the request
// context but not the timeout.
func (r *ClickRecorder) Go(ctx context.Context, v domain.Visit) {
	ctx = context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				log.Printf("[clicks] panic while recording %s: %v", v.Slug, p)
			}
		}()
		_ = r.Record(ctx, v)
	}()
}

// Wait blocks until every pending task finishes or ctx is done
func (r *ClickRecorder) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
