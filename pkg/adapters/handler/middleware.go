package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wadjakorntonsri/deeplinker/pkg/config"
)

type ctxKey string

const userEmailKey ctxKey = "user_email"

// UserEmail returns the authenticated email stored by AuthMiddleware
func UserEmail(ctx context.Context) string {
	email, _ := ctx.Value(userEmailKey).(string)
	return email
}

type Middleware struct {
	jwtSecret []byte
}

func NewMiddleware(cfg *config.Config) *Middleware {
	return &Middleware{
		jwtSecret: []byte(cfg.JWTSecret),
	}
}

// AuthMiddleware verifies the JWT token from the cookie
func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			m.reject(w, r)
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
			return m.jwtSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || !token.Valid {
			m.reject(w, r)
			return
		}

		// Token is valid, proceed
		ctx := context.WithValue(r.Context(), userEmailKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	http.Redirect(w, r, "/auth/google/login", http.StatusTemporaryRedirect)
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// AccessLog logs one line per request
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s ua=%q", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond), r.UserAgent())
	})
}
