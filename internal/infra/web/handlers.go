package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"life-story-companion/internal/domain"
	"life-story-companion/internal/infra/logging"
	red "life-story-companion/internal/infra/redis"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID  string `json:"session_id"`
	Reply      string `json:"reply"`
	HasSummary bool   `json:"has_summary"`
}

type sessionResponse struct {
	SessionID string    `json:"session_id"`
	TurnCount int       `json:"turn_count"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	limitKey := req.SessionID
	if limitKey == "" {
		limitKey = r.RemoteAddr
	}
	if !s.allowTurn(ctx, red.SessionChatKey(limitKey)) {
		http.Error(w, "Too many requests", http.StatusTooManyRequests)
		return
	}

	result, err := s.convUC.HandleTurn(ctx, req.SessionID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			http.Error(w, "Message must not be empty", http.StatusBadRequest)
		case errors.Is(err, domain.ErrSessionBusy), errors.Is(err, domain.ErrConflict):
			http.Error(w, "A turn is already in progress for this session", http.StatusConflict)
		default:
			logging.With(ctx, s.log).Error().Err(err).Msg("handle turn failed")
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:  result.SessionID,
		Reply:      result.Reply,
		HasSummary: result.HasSummary,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.convUC.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("get session failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: sess.ID,
		TurnCount: sess.TurnCount,
		Summary:   sess.Summary,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.convUC.DeleteSession(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("delete session failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSafetyStats(w http.ResponseWriter, r *http.Request) {
	totals, err := s.statsUC.SafetyTotals(r.Context())
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("safety stats failed")
		http.Error(w, "Failed to get totals", http.StatusInternalServerError)
		return
	}
	out := make(map[string]int, len(totals))
	for category, count := range totals {
		out[string(category)] = count
	}
	writeJSON(w, http.StatusOK, struct {
		Interventions map[string]int `json:"interventions_by_category"`
	}{Interventions: out})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if s.apiKey == "" || req.APIKey != s.apiKey {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("mint admin token failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Token string `json:"token"`
	}{Token: token})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
