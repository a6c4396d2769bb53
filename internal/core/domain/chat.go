package domain

import "time"

// Role identifies the author of a chat turn.
type Role string

// Chat roles.
const (
	// RoleUser is a turn typed by the user.
	RoleUser Role = "user"

	// RoleAssistant is a generated answer.
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// ChatTurn is one entry in the conversation history.
// Immutable once appended.
type ChatTurn struct {
	// Role is who authored the turn.
	Role Role

	// Content is the free-text body.
	Content string

	// CreatedAt is when the turn was appended.
	CreatedAt time.Time
}

// Answer is the outcome of one completed pipeline turn.
type Answer struct {
	// Content is the generated answer text.
	Content string

	// RewrittenQuery is the query actually used for retrieval.
	// Equals the original question when rewriting failed or was skipped.
	RewrittenQuery string

	// Sources are the retrieved chunks the answer was grounded on.
	// Empty when the answer came from web search or parametric knowledge.
	Sources []ScoredChunk

	// UsedWebSearch is true when the context came from the web fallback.
	UsedWebSearch bool

	// Stages records the per-stage outcomes for the turn.
	Stages []StageResult
}
