package domain

import (
	"sort"
	"time"
)

// Session is the mutable per-conversation state. It is created once at
// startup, passed explicitly into the pipeline, and never shared between
// goroutines (turns are strictly sequential).
type Session struct {
	// ID identifies the session in the history store.
	ID string

	// StartedAt is when the session began.
	StartedAt time.Time

	// Threshold is the similarity threshold for retrieval, in [0,1].
	Threshold float64

	// WebSearchEnabled gates the web fallback stage.
	WebSearchEnabled bool

	// ForceWebSearch skips retrieval and goes straight to web search.
	ForceWebSearch bool

	// processed is the set of source names already ingested this session.
	processed map[string]struct{}

	// history is the ordered chat transcript.
	history []ChatTurn
}

// NewSession creates a session with the given retrieval threshold.
func NewSession(id string, threshold float64) *Session {
	return &Session{
		ID:        id,
		StartedAt: time.Now(),
		Threshold: threshold,
		processed: make(map[string]struct{}),
	}
}

// IsProcessed returns true if the source name is already in the processed
// list.
func (s *Session) IsProcessed(sourceName string) bool {
	_, ok := s.processed[sourceName]
	return ok
}

// MarkProcessed records a source name as ingested. Adding the same name
// twice is a no-op; the list holds each name at most once.
func (s *Session) MarkProcessed(sourceName string) {
	if sourceName == "" {
		return
	}
	s.processed[sourceName] = struct{}{}
}

// ProcessedSources returns the processed source names sorted ascending.
func (s *Session) ProcessedSources() []string {
	names := make([]string, 0, len(s.processed))
	for name := range s.processed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reconcile merges source names found in the vector store into the processed
// list. Best-effort: names present in the store are trusted, divergence from
// partial uploads is tolerated.
func (s *Session) Reconcile(storeSources []string) {
	for _, name := range storeSources {
		s.MarkProcessed(name)
	}
}

// AppendTurn appends a turn to the transcript. Turns are immutable once
// appended.
func (s *Session) AppendTurn(role Role, content string) ChatTurn {
	turn := ChatTurn{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	s.history = append(s.history, turn)
	return turn
}

// History returns a copy of the transcript in append order.
func (s *Session) History() []ChatTurn {
	out := make([]ChatTurn, len(s.history))
	copy(out, s.history)
	return out
}

// ClearHistory drops the transcript. The processed list is untouched.
func (s *Session) ClearHistory() {
	s.history = nil
}
