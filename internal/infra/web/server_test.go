package web

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"life-story-companion/internal/config"
	"life-story-companion/internal/infra/logging"
)

// newTestLogger creates a silent logger for tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

func newTestServer(convUC *fakeConvUC, statsUC *fakeStatsUC, limiter RateLimiter, apiKey string) *Server {
	auth := NewAuthManager("test-admin-jwt-secret-please-change", false, "", time.Minute)
	chat := config.ChatConfig{RateLimit: 5, RateWindow: time.Minute}
	return NewServer(convUC, statsUC, limiter, auth, apiKey, chat, newTestLogger())
}

func TestAuthMiddleware(t *testing.T) {
	dummyHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := newTestServer(&fakeConvUC{}, &fakeStatsUC{}, nil, "test-admin-key")
	protected := server.authMiddleware(dummyHandler)

	t.Run("no credentials -> 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/safety", nil)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("wrong bearer token -> 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/safety", nil)
		req.Header.Set("Authorization", "Bearer wrong-key")
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("static api key -> 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/safety", nil)
		req.Header.Set("Authorization", "Bearer test-admin-key")
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("minted jwt -> 200", func(t *testing.T) {
		mintRec := httptest.NewRecorder()
		token, err := server.auth.Mint(mintRec)
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/safety", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("no api key configured -> 403", func(t *testing.T) {
		bare := newTestServer(&fakeConvUC{}, &fakeStatsUC{}, nil, "")
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/safety", nil)
		rr := httptest.NewRecorder()
		bare.authMiddleware(dummyHandler).ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})
}

func TestTraceContextCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.With(r.Context(), &logger).Info().Msg("handling")
		w.WriteHeader(http.StatusOK)
	})

	h := middleware.RequestID(traceContext(inner))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if !strings.Contains(buf.String(), `"trace_id":`) {
		t.Fatalf("log line missing trace_id: %s", buf.String())
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	server := newTestServer(&fakeConvUC{}, &fakeStatsUC{}, nil, "k")
	router := server.Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rr.Code)
	}
}
