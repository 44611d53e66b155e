package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
	"github.com/wadjakorntonsri/deeplinker/pkg/core/geo"
	"github.com/wadjakorntonsri/deeplinker/pkg/core/services"
)

// Visitor decides how to answer a short link visit
type Visitor interface {
	Visit(ctx context.Context, v domain.Visit) (*services.Decision, error)
}

// RedirectHandler serves short links
type RedirectHandler struct {
	visits Visitor
	page   *BreakoutRenderer
}

func NewRedirectHandler(visits Visitor, page *BreakoutRenderer) *RedirectHandler {
	return &RedirectHandler{visits: visits, page: page}
}

// Redirect to the destination or render the breakout page
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" || len(slug) > domain.MaxSlugLength {
		http.NotFound(w, r)
		return
	}

	d, err := h.visits.Visit(r.Context(), domain.Visit{
		Slug:      slug,
		UserAgent: r.UserAgent(),
		Network:   geo.MetaFromHeader(r.Header),
		At:        time.Now().UTC(),
	})
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	if d.Action == services.ActionRedirect {
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, d.Link.URL, http.StatusTemporaryRedirect)
		return
	}

	if err := h.page.Render(w, d.Plan); err != nil {
		log.Printf("render breakout page for %s: %v", slug, err)
		http.Redirect(w, r, d.Link.URL, http.StatusTemporaryRedirect)
	}
}
