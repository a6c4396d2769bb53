package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// SessionRecord summarises one persisted chat session.
type SessionRecord struct {
	// ID is the session identifier.
	ID string

	// StartedAt is when the session began.
	StartedAt time.Time

	// TurnCount is the number of turns recorded for the session.
	TurnCount int
}

// HistoryStore persists chat transcripts across runs.
type HistoryStore interface {
	// CreateSession registers a new session.
	CreateSession(ctx context.Context, id string, startedAt time.Time) error

	// AppendTurn records one turn of a session.
	AppendTurn(ctx context.Context, sessionID string, turn domain.ChatTurn) error

	// ListSessions returns all sessions, most recent first.
	ListSessions(ctx context.Context) ([]SessionRecord, error)

	// GetTurns returns a session's transcript in append order.
	// Returns domain.ErrNotFound when the session does not exist.
	GetTurns(ctx context.Context, sessionID string) ([]domain.ChatTurn, error)

	// Clear deletes all sessions and turns.
	Clear(ctx context.Context) error

	// Close releases the database handle.
	Close() error
}
