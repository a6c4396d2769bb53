package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService exposes persisted chat transcripts.
type HistoryService struct {
	store driven.HistoryStore
}

// NewHistoryService creates a history service.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// ListSessions returns all recorded sessions, most recent first.
func (s *HistoryService) ListSessions(ctx context.Context) ([]driven.SessionRecord, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// GetTranscript returns one session's transcript in append order.
func (s *HistoryService) GetTranscript(ctx context.Context, sessionID string) ([]domain.ChatTurn, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("empty session id: %w", domain.ErrInvalidInput)
	}
	turns, err := s.store.GetTurns(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	return turns, nil
}

// Clear deletes all recorded history.
func (s *HistoryService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
