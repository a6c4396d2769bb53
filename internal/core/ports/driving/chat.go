package driving

import (
	"context"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
)

// ChatService runs the per-turn pipeline.
type ChatService interface {
	// Ask runs one full turn (rewrite, retrieve, web fallback, generate)
	// against the given session. On success the question and answer are
	// appended to the session history; on terminal failure nothing is.
	Ask(ctx context.Context, session *domain.Session, question string) domain.TurnResult

	// Reconcile repairs the session's processed-sources list from the
	// vector store. Best-effort: an unreachable store is reported but not
	// fatal.
	Reconcile(ctx context.Context, session *domain.Session) error
}
