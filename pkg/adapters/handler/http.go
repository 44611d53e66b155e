package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
	"github.com/wadjakorntonsri/deeplinker/pkg/ports"
)

type HTTPHandler struct {
	links     ports.LinkService
	analytics ports.AnalyticsService
}

func NewHTTPHandler(links ports.LinkService, analytics ports.AnalyticsService) *HTTPHandler {
	return &HTTPHandler{links: links, analytics: analytics}
}

// CreateLinkRequest payload
type CreateLinkRequest struct {
	URL  string `json:"url"`
	Slug string `json:"slug,omitempty"`
	Tag  string `json:"tag,omitempty"`
}

// Create Link
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	link, err := h.links.Shorten(r.Context(), req.URL, req.Slug, req.Tag)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Printf("[links] %s created %s", UserEmail(r.Context()), link.Slug)
	writeJSON(w, http.StatusOK, link)
}

// List Links
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.links.ListLinks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  links,
		"total": len(links),
	})
}

// Get Link with its click history
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.GetLink(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// Delete Link
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.links.DeleteLink(r.Context(), r.PathValue("slug")); err != nil {
		writeError(w, r, err)
		return
	}
	log.Printf("[links] %s deleted %s", UserEmail(r.Context()), r.PathValue("slug"))
	w.WriteHeader(http.StatusNoContent)
}

// Stats for a Link over ?range=
func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.LinkStats(r.Context(), r.PathValue("slug"), r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// TagActivity across all links over ?range=
func (h *HTTPHandler) TagActivity(w http.ResponseWriter, r *http.Request) {
	tags, err := h.analytics.TagActivity(r.Context(), r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": tags})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps domain errors to status codes. Anything unexpected is
// logged, reported and hidden behind a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeJSONError(w, http.StatusConflict, "Slug already in use")
	case errors.Is(err, domain.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "Link not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSONError(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		log.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}
