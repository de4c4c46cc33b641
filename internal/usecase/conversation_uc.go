// File: internal/usecase/conversation_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"life-story-companion/internal/domain"
	"life-story-companion/internal/domain/model"
	"life-story-companion/internal/domain/ports/adapter"
	"life-story-companion/internal/domain/ports/repository"
	"life-story-companion/internal/infra/logging"
	"life-story-companion/internal/infra/metrics"
	"life-story-companion/internal/prompts"
	"life-story-companion/internal/safety"
)

// Compile-time check
var _ ConversationUseCase = (*conversationUC)(nil)

// TurnResult is what one inbound turn produces for the transport layer.
type TurnResult struct {
	SessionID  string
	Reply      string
	HasSummary bool

	// Blocked is true when the safety classifier intercepted the message and
	// Reply is a fixed redirect, not generated text.
	Blocked  bool
	Category model.SafetyCategory
}

type ConversationUseCase interface {
	// HandleTurn runs one user message through safety routing, generation and
	// the summarized-memory state machine. An unparseable session id is not an
	// error; a fresh session is substituted.
	HandleTurn(ctx context.Context, sessionID, message string) (*TurnResult, error)
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	// DeleteSession erases the session unconditionally (GDPR-style).
	DeleteSession(ctx context.Context, sessionID string) error
}

// SessionLocker serializes turns on one session. Implemented by the redis
// locker; nil disables locking (tests, single-instance dev).
type SessionLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

type conversationUC struct {
	sessions      repository.SessionRepository
	interventions repository.InterventionRepository
	gen           adapter.AIServiceAdapter
	summarizer    adapter.AIServiceAdapter
	lib           *prompts.Library
	locker        SessionLocker
	modelName     string
	summaryEvery  int
	dev           bool
	log           *zerolog.Logger
}

const turnLockTTL = 30 * time.Second

// NewConversationUseCase wires the session memory manager. summarizer may be
// the same adapter as gen. summaryEvery <= 0 falls back to the default of 4.
// dev disables redaction of logged message content.
func NewConversationUseCase(
	sessions repository.SessionRepository,
	interventions repository.InterventionRepository,
	gen adapter.AIServiceAdapter,
	summarizer adapter.AIServiceAdapter,
	lib *prompts.Library,
	locker SessionLocker,
	modelName string,
	summaryEvery int,
	dev bool,
	logger *zerolog.Logger,
) *conversationUC {
	if summaryEvery <= 0 {
		summaryEvery = 4
	}
	if summarizer == nil {
		summarizer = gen
	}
	return &conversationUC{
		sessions:      sessions,
		interventions: interventions,
		gen:           gen,
		summarizer:    summarizer,
		lib:           lib,
		locker:        locker,
		modelName:     modelName,
		summaryEvery:  summaryEvery,
		dev:           dev,
		log:           logger,
	}
}

func (c *conversationUC) HandleTurn(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	defer logging.TraceDuration(c.log, "ConversationUC.HandleTurn")()

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.ErrInvalidArgument
	}

	id, generated := model.ResolveSessionID(sessionID)
	ctx = logging.WithSessionPrefix(ctx, model.SessionPrefix(id))
	log := logging.With(ctx, c.log)
	if generated {
		log.Debug().Msg("substituted fresh session id")
	}

	if c.locker != nil {
		token, err := c.locker.TryLock(ctx, turnLockKey(id), turnLockTTL)
		switch {
		case errors.Is(err, domain.ErrSessionBusy):
			return nil, domain.ErrSessionBusy
		case err != nil:
			// Lock store unreachable. Proceed without the lock; the version
			// check on save still rejects a racing writer.
			log.Warn().Err(err).Msg("turn lock unavailable, continuing without it")
		default:
			defer func() { _ = c.locker.Unlock(ctx, turnLockKey(id), token) }()
		}
	}

	sess, err := c.sessions.FindByID(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		sess = model.NewSession(id)
		if err := c.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	verdict := safety.Classify(message)
	if !verdict.Safe {
		return c.interceptUnsafe(ctx, sess, message, verdict)
	}

	reply, err := c.generate(ctx, sess, message)
	if err != nil {
		// The turn becomes a no-op: no counters move, the user gets the
		// fixed apology instead of provider error text.
		log.Error().Err(err).Msg("generation failed")
		apology, aerr := c.lib.Get("system", "apology")
		if aerr != nil {
			return nil, aerr
		}
		return &TurnResult{SessionID: sess.ID, Reply: apology, HasSummary: sess.HasSummary()}, nil
	}

	sess.ApplyExchange(message, reply)
	metrics.TurnCompleted()

	if sess.SummaryDue(c.summaryEvery) {
		if summary, serr := c.summarize(ctx, sess); serr != nil {
			// Deferred, not lost: pending stays populated and folds in on the
			// next trigger from a slightly stale base.
			metrics.SummaryDeferred()
			log.Warn().Err(serr).Msg("summarization deferred")
		} else {
			sess.ApplySummary(summary)
			metrics.SummaryGenerated()
		}
	}

	if err := c.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return &TurnResult{SessionID: sess.ID, Reply: reply, HasSummary: sess.HasSummary()}, nil
}

// interceptUnsafe is the terminal branch for a blocked turn: an anonymized
// audit record and the canned redirect. Session state is never touched and
// the generation adapter is never called.
func (c *conversationUC) interceptUnsafe(ctx context.Context, sess *model.Session, message string, verdict safety.Verdict) (*TurnResult, error) {
	log := logging.With(ctx, c.log)
	redirect, err := c.lib.SafetyResponse(verdict.Category)
	if err != nil {
		return nil, err
	}

	intervention := model.NewSafetyIntervention(sess.ID, verdict.Category)
	if err := c.interventions.Append(ctx, intervention); err != nil {
		// The redirect must still reach the user; the audit write is
		// best-effort.
		log.Error().Err(err).Str("category", string(verdict.Category)).Msg("intervention append failed")
	}
	metrics.SafetyBlocked(string(verdict.Category))
	log.Warn().
		Str("category", string(verdict.Category)).
		Strs("matched", verdict.MatchedPatterns).
		Str("message", logging.Redact(message, c.dev)).
		Msg("safety intervention")

	return &TurnResult{
		SessionID:  sess.ID,
		Reply:      redirect,
		HasSummary: sess.HasSummary(),
		Blocked:    true,
		Category:   verdict.Category,
	}, nil
}

func (c *conversationUC) generate(ctx context.Context, sess *model.Session, message string) (string, error) {
	system, err := c.systemPrompt(sess)
	if err != nil {
		return "", err
	}
	msgs := []adapter.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: message},
	}

	start := time.Now()
	reply, usage, err := c.gen.ChatWithUsage(ctx, c.modelName, msgs)
	metrics.ObserveChatCall(c.modelName, usage.PromptTokens, usage.CompletionTokens, time.Since(start), err == nil)
	return reply, err
}

// systemPrompt builds the base persona, extended with the rolling summary
// when one exists. The summary is the only continuity context the model ever
// sees; no raw history is included.
func (c *conversationUC) systemPrompt(sess *model.Session) (string, error) {
	base, err := c.lib.Get("system", "base")
	if err != nil {
		return "", err
	}
	if !sess.HasSummary() {
		return base, nil
	}
	return c.lib.Render("system", "with_summary", map[string]string{
		"base":    base,
		"summary": sess.Summary,
	})
}

func (c *conversationUC) summarize(ctx context.Context, sess *model.Session) (string, error) {
	prompt, err := c.lib.Render("summary", "instructions", map[string]string{
		"summary":         sess.Summary,
		"user_message":    sess.PendingUserMessage,
		"assistant_reply": sess.PendingAssistantReply,
	})
	if err != nil {
		return "", err
	}
	summary, err := c.summarizer.Chat(ctx, c.modelName, []adapter.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", err
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", errors.New("summarizer returned empty text")
	}
	return summary, nil
}

func (c *conversationUC) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	id, generated := model.ResolveSessionID(sessionID)
	if generated {
		return nil, domain.ErrNotFound
	}
	return c.sessions.FindByID(ctx, id)
}

func (c *conversationUC) DeleteSession(ctx context.Context, sessionID string) error {
	id, generated := model.ResolveSessionID(sessionID)
	if generated {
		return domain.ErrNotFound
	}
	return c.sessions.Delete(ctx, id)
}

func turnLockKey(sessionID string) string { return "turn_lock:" + sessionID }
