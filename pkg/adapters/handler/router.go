package handler

import (
	"context"
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/wadjakorntonsri/deeplinker/pkg/config"
	"github.com/wadjakorntonsri/deeplinker/pkg/ports"
)

// Dependencies are the use cases the router exposes
type Dependencies struct {
	Links     ports.LinkService
	Analytics ports.AnalyticsService
	Accounts  ports.AuthService
	Visits    Visitor
	Ping      func(ctx context.Context) error
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	// Initialize Handlers
	h := NewHTTPHandler(deps.Links, deps.Analytics)
	rh := NewRedirectHandler(deps.Visits, NewBreakoutRenderer())

	// Initialize Middleware
	mw := NewMiddleware(cfg)

	// Initialize Auth Handler
	authHandler := NewAuthHandler(cfg, deps.Accounts)

	// Setup Router
	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ping != nil {
			if err := deps.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "database unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /r/{slug}", rh.Redirect)
	mux.HandleFunc("GET /{slug}", rh.Redirect)
	mux.HandleFunc("POST /api/v1/login", authHandler.PasswordLogin)
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Protected Routes (API)
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /api/v1/links", h.Create)
	protectedMux.HandleFunc("GET /api/v1/links", h.List)
	protectedMux.HandleFunc("GET /api/v1/links/{slug}", h.Get)
	protectedMux.HandleFunc("DELETE /api/v1/links/{slug}", h.Delete)
	protectedMux.HandleFunc("GET /api/v1/links/{slug}/stats", h.Stats)
	protectedMux.HandleFunc("GET /api/v1/analytics/tags", h.TagActivity)

	// Apply Middleware to Protected Routes
	// Note: We match /api/v1/ to capture all API requests.
	// Since protectedMux contains the full paths, this works for dispatching.
	mux.Handle("/api/v1/", mw.AuthMiddleware(protectedMux))

	var handler http.Handler = mux
	if cfg.SentryDSN != "" {
		handler = sentryhttp.New(sentryhttp.Options{}).Handle(handler)
	}
	return AccessLog(handler)
}
