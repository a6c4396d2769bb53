package driving

import (
	"context"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
)

// HistoryService exposes persisted chat transcripts.
type HistoryService interface {
	// ListSessions returns all recorded sessions, most recent first.
	ListSessions(ctx context.Context) ([]driven.SessionRecord, error)

	// GetTranscript returns one session's transcript in append order.
	GetTranscript(ctx context.Context, sessionID string) ([]domain.ChatTurn, error)

	// Clear deletes all recorded history.
	Clear(ctx context.Context) error
}
