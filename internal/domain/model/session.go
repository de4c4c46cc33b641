package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionStage string

const (
	SessionNew             SessionStage = "new"
	SessionActiveNoSummary SessionStage = "active_no_summary"
	SessionActiveSummary   SessionStage = "active_with_summary"
)

// Session is the aggregate root for one conversation. It stores a rolling
// summary instead of a transcript: the only raw text kept between turns is
// the single exchange that has not been folded into the summary yet.
type Session struct {
	ID        string `json:"id"`
	TurnCount int    `json:"turn_count"`

	// Summary is regenerated in place by the summarizer; it never grows by
	// concatenation and is never removed once set.
	Summary string `json:"summary,omitempty"`

	// PendingUserMessage and PendingAssistantReply hold at most one exchange,
	// the one since the last summarization. Both set or both empty.
	PendingUserMessage    string `json:"pending_user_message,omitempty"`
	PendingAssistantReply string `json:"pending_assistant_reply,omitempty"`

	// Version guards saves: a write whose version is stale must be rejected
	// by the repository.
	Version int `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ResolveSessionID returns the given id when it parses as a UUID, otherwise a
// freshly generated one. An unusable caller-supplied id is never an error; the
// caller simply gets a new session.
func ResolveSessionID(raw string) (id string, generated bool) {
	if parsed, err := uuid.Parse(raw); err == nil {
		return parsed.String(), false
	}
	return uuid.NewString(), true
}

func (s *Session) Stage() SessionStage {
	switch {
	case s.Summary != "":
		return SessionActiveSummary
	case s.TurnCount > 0:
		return SessionActiveNoSummary
	default:
		return SessionNew
	}
}

func (s *Session) HasSummary() bool { return s.Summary != "" }

// HasPending reports whether an exchange is waiting to be summarized.
func (s *Session) HasPending() bool {
	return s.PendingUserMessage != "" || s.PendingAssistantReply != ""
}

// ApplyExchange records one answered turn: bumps the turn count and replaces
// the pending pair with this exchange.
func (s *Session) ApplyExchange(userMessage, assistantReply string) {
	s.TurnCount++
	s.PendingUserMessage = userMessage
	s.PendingAssistantReply = assistantReply
	s.UpdatedAt = time.Now()
}

// ApplySummary installs a freshly generated rolling summary and clears the
// pending exchange it was built from.
func (s *Session) ApplySummary(summary string) {
	s.Summary = summary
	s.PendingUserMessage = ""
	s.PendingAssistantReply = ""
	s.UpdatedAt = time.Now()
}

// SummaryDue reports whether the current turn count lands on a summarization
// boundary. frequency <= 0 disables summarization.
func (s *Session) SummaryDue(frequency int) bool {
	if frequency <= 0 {
		return false
	}
	return s.TurnCount > 0 && s.TurnCount%frequency == 0
}
