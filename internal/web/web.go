package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"calbridge/internal/config"
	"calbridge/internal/ics"
	appLog "calbridge/internal/log"
	"calbridge/internal/render"
	"calbridge/internal/tzconvert"
)

// Server exposes the renderer event feed over HTTP.
type Server struct {
	cfg     *config.Config
	fetcher *ics.Fetcher
	zones   *tzconvert.LocationCache
	mux     *http.ServeMux

	// In-memory cache for /api/events responses so repeated UI polls do not
	// redo fetch/import/export work. The cron loop in cmd/calbridge keeps
	// it warm.
	feedMu    sync.RWMutex
	feedCache *feedCache
}

const feedCacheTTL = 30 * time.Second

type feedCache struct {
	resp      feedResponse
	updatedAt time.Time
}

// feedResponse is the JSON response shape for /api/events.
type feedResponse struct {
	Events          []render.Event `json:"events"`
	DisplayTimeZone string         `json:"display_timezone"`
	WeekStart       string         `json:"week_start"`
}

func NewServer(cfg *config.Config, fetcher *ics.Fetcher, zones *tzconvert.LocationCache) *Server {
	s := &Server{
		cfg:     cfg,
		fetcher: fetcher,
		zones:   zones,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	return s
}

// Handler returns the server's http.Handler, wrapped with Basic Auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Refresh rebuilds the feed cache; the cron loop calls this so UI requests
// mostly hit a warm cache.
func (s *Server) Refresh(ctx context.Context) {
	resp := s.buildResponse(ctx)
	s.feedMu.Lock()
	s.feedCache = &feedCache{resp: resp, updatedAt: time.Now()}
	s.feedMu.Unlock()
	appLog.Info("feed refreshed", "event_count", len(resp.Events))
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health 는 항상 무인증으로 노출한다.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="calbridge", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	s.feedMu.RLock()
	fc := s.feedCache
	s.feedMu.RUnlock()
	if fc != nil && now.Sub(fc.updatedAt) < feedCacheTTL {
		writeJSON(w, http.StatusOK, fc.resp)
		return
	}

	resp := s.buildResponse(r.Context())

	s.feedMu.Lock()
	s.feedCache = &feedCache{resp: resp, updatedAt: time.Now()}
	s.feedMu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) buildResponse(ctx context.Context) feedResponse {
	display, lerr := s.zones.Load(s.cfg.Timezone)
	if lerr != nil {
		appLog.Warn("web: unknown display timezone, using UTC", "timezone", s.cfg.Timezone)
	}
	return feedResponse{
		Events:          BuildFeed(ctx, s.cfg, s.fetcher, s.zones),
		DisplayTimeZone: display.String(),
		WeekStart:       s.cfg.WeekStart,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

// ListenAndServe starts the HTTP server bound to cfg.Listen and shuts it
// down when ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
