package stream

import "errors"

var (
	// ErrDuplicateActiveStream is returned when Begin is called for a session
	// that already has an active buffer. The caller must complete or cancel
	// the first stream; a second one is never queued.
	ErrDuplicateActiveStream = errors.New("session already has an active stream")

	// ErrBufferAlreadyTerminal is returned when a terminal transition is
	// attempted on a buffer that already reached a terminal state. It signals
	// a protocol violation by the integrating layer.
	ErrBufferAlreadyTerminal = errors.New("stream buffer already in a terminal state")

	// ErrNoActiveStream is returned when a stream operation targets a session
	// that has no active buffer. Distinct from a vanished session: the
	// session may well exist and simply not be streaming.
	ErrNoActiveStream = errors.New("session has no active stream")
)
