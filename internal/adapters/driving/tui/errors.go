package tui

import "errors"

// Port validation errors.
var (
	// ErrMissingChatService indicates the chat service port is nil.
	ErrMissingChatService = errors.New("chat service is required")

	// ErrMissingSession indicates the session was not provided.
	ErrMissingSession = errors.New("session is required")
)
