package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"life-story-companion/internal/config"
	"life-story-companion/internal/infra/logging"
	"life-story-companion/internal/usecase"
)

// RateLimiter is what the chat endpoint needs from the redis limiter.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Server struct {
	convUC  usecase.ConversationUseCase
	statsUC usecase.StatsUseCase
	limiter RateLimiter
	auth    *AuthManager
	apiKey  string
	chat    config.ChatConfig
	log     *zerolog.Logger
}

func NewServer(
	convUC usecase.ConversationUseCase,
	statsUC usecase.StatsUseCase,
	limiter RateLimiter,
	auth *AuthManager,
	apiKey string,
	chat config.ChatConfig,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		convUC:  convUC,
		statsUC: statsUC,
		limiter: limiter,
		auth:    auth,
		apiKey:  apiKey,
		chat:    chat,
		log:     logger,
	}
}

// Router builds the full route tree. The chat and session endpoints are the
// public surface; stats sit behind the admin auth middleware.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(traceContext)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Delete("/sessions/{id}", s.handleDeleteSession)

		r.Post("/admin/login", s.handleAdminLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/stats/safety", s.handleSafetyStats)
			r.Post("/admin/logout", s.handleAdminLogout)
		})
	})
	return r
}

// traceContext copies the chi request id into the logging context so every
// log line of a request carries the same trace_id.
func traceContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(logging.WithTraceID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware accepts either the static admin API key or a minted JWT as
// a bearer credential.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			logging.With(r.Context(), s.log).Error().Msg("admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if hdr := r.Header.Get("Authorization"); hdr == "Bearer "+s.apiKey {
			next.ServeHTTP(w, r)
			return
		}
		if s.auth != nil {
			if _, err := s.auth.ParseFromRequest(r); err == nil {
				next.ServeHTTP(w, r)
				return
			}
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

// allowTurn applies the per-session chat rate limit. Limiter outages fail
// open; they should not take chat down.
func (s *Server) allowTurn(ctx context.Context, key string) bool {
	if s.limiter == nil || s.chat.RateLimit <= 0 {
		return true
	}
	ok, err := s.limiter.Allow(ctx, key, s.chat.RateLimit, s.chat.RateWindow)
	if err != nil {
		logging.With(ctx, s.log).Warn().Err(err).Msg("rate limiter unavailable")
		return true
	}
	return ok
}
