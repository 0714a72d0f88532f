package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexiquest/review-api/internal/session"
)

// SessionCompletedPayload is the body of a session.completed event.
type SessionCompletedPayload struct {
	SessionID   uuid.UUID       `json:"session_id"`
	UserID      uuid.UUID       `json:"user_id"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	Exited      bool            `json:"exited"`
	Summary     session.Summary `json:"summary"`
}

// SessionSink emits session summaries as session.completed events.
type SessionSink struct {
	emitter EventEmitter
}

var _ session.SummarySink = (*SessionSink)(nil)

// NewSessionSink creates a SessionSink. It panics if emitter is nil.
func NewSessionSink(emitter EventEmitter) *SessionSink {
	if emitter == nil {
		panic("event emitter cannot be nil")
	}
	return &SessionSink{emitter: emitter}
}

// SessionCompleted implements session.SummarySink.
func (s *SessionSink) SessionCompleted(ctx context.Context, sess *session.Session, summary session.Summary) error {
	event, err := NewEvent(TypeSessionCompleted, SessionCompletedPayload{
		SessionID:   sess.ID,
		UserID:      sess.UserID,
		StartedAt:   sess.StartedAt,
		CompletedAt: sess.CompletedAt,
		Exited:      sess.Exited,
		Summary:     summary,
	})
	if err != nil {
		return fmt.Errorf("failed to build session event: %w", err)
	}

	return s.emitter.EmitEvent(ctx, event)
}
