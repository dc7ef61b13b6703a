package chat

import "errors"

var (
	// ErrSessionNotFound is returned for operations on unknown session ids.
	// Call sites racing against session closure tolerate it silently.
	ErrSessionNotFound = errors.New("session not found")

	// ErrCannotCloseLastSession guards the invariant that a conversational
	// surface always exists
	ErrCannotCloseLastSession = errors.New("cannot close the last session")
)
