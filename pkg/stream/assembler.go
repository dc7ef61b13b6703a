package stream

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/chat"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/logger"
)

// BufferState is the lifecycle state of a StreamBuffer
type BufferState string

const (
	StateActive    BufferState = "active"
	StateCompleted BufferState = "completed"
	StateCancelled BufferState = "cancelled"
	StateFailed    BufferState = "failed"
)

// IsTerminal reports whether the state is final
func (s BufferState) IsTerminal() bool {
	return s != StateActive
}

// StreamBuffer accumulates one in-flight streaming response for one session.
// At most one buffer per session is active at a time; it lives until a
// terminal transition and is then destroyed. All access is serialized by the
// buffer's own mutex, so fragments for one buffer apply in arrival order.
type StreamBuffer struct {
	mu             sync.Mutex
	id             string
	sessionID      string
	provider       string
	model          string
	raw            strings.Builder
	lastSafeRender string
	startedAt      time.Time
	state          BufferState
}

// ID returns the buffer id
func (b *StreamBuffer) ID() string { return b.id }

// SessionID returns the owning session id
func (b *StreamBuffer) SessionID() string { return b.sessionID }

// StartedAt returns when the stream began
func (b *StreamBuffer) StartedAt() time.Time { return b.startedAt }

// State returns the current lifecycle state
func (b *StreamBuffer) State() BufferState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Raw returns the text accumulated so far
func (b *StreamBuffer) Raw() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.raw.String()
}

// SafeRender returns the latest render-safe projection of the accumulated
// text: it never contains a syntactically incomplete formatting construct.
func (b *StreamBuffer) SafeRender() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSafeRender
}

// Assembler coordinates stream buffers across sessions: it enforces the
// one-active-stream-per-session rule, applies fragments in arrival order and
// finalizes buffers into immutable session messages.
type Assembler struct {
	mu        sync.Mutex
	active    map[string]*StreamBuffer
	sessions  *chat.SessionRegistry
	formatter *Formatter
	log       *logger.Logger
}

// NewAssembler creates an Assembler appending finalized messages to the
// given session registry
func NewAssembler(sessions *chat.SessionRegistry, log *logger.Logger) *Assembler {
	if log == nil {
		log = logger.Discard()
	}
	return &Assembler{
		active:    make(map[string]*StreamBuffer),
		sessions:  sessions,
		formatter: NewFormatter(),
		log:       log.WithComponent("stream_assembler"),
	}
}

// Begin opens a buffer for one streaming response in the given session.
// A second Begin for the same session is rejected with
// ErrDuplicateActiveStream, not queued.
func (a *Assembler) Begin(sessionID, provider, model string) (*StreamBuffer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.active[sessionID]; exists {
		return nil, ErrDuplicateActiveStream
	}

	buffer := &StreamBuffer{
		id:        uuid.NewString(),
		sessionID: sessionID,
		provider:  provider,
		model:     model,
		startedAt: time.Now(),
		state:     StateActive,
	}
	a.active[sessionID] = buffer
	a.log.Debug("stream %s started for session %s", buffer.id, sessionID)
	return buffer, nil
}

// ActiveBuffer returns the active buffer for a session, if any
func (a *Assembler) ActiveBuffer(sessionID string) (*StreamBuffer, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buffer, ok := a.active[sessionID]
	return buffer, ok
}

// AppendFragment applies one fragment to the buffer and recomputes the
// render-safe projection. Fragments arriving after a terminal transition are
// dropped: cancellation is effective immediately regardless of transport
// cancel latency.
func (a *Assembler) AppendFragment(buffer *StreamBuffer, text string) {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	if buffer.state.IsTerminal() {
		a.log.Debug("fragment dropped, stream %s is %s", buffer.id, buffer.state)
		return
	}

	buffer.raw.WriteString(text)
	buffer.lastSafeRender = a.formatter.FormatPartial(buffer.raw.String())
}

// Complete transitions the buffer to completed, finalizes the accumulated
// text through the full formatter and appends the resulting assistant
// message to the owning session. The buffer is dead afterwards.
func (a *Assembler) Complete(buffer *StreamBuffer, meta chat.MessageMetadata) (chat.Message, error) {
	raw, err := a.finish(buffer, StateCompleted)
	if err != nil {
		return chat.Message{}, err
	}

	msg := chat.NewAssistantMessage(a.formatter.Format(raw)).
		WithProvider(buffer.provider, buffer.model).
		WithMetadata(meta)
	a.append(buffer.sessionID, msg)
	return msg, nil
}

// Cancel transitions the buffer to cancelled; the partial content is
// discarded and no message is appended.
func (a *Assembler) Cancel(buffer *StreamBuffer, reason string) error {
	if _, err := a.finish(buffer, StateCancelled); err != nil {
		return err
	}
	a.log.Info("stream %s cancelled: %s", buffer.id, reason)
	return nil
}

// Fail transitions the buffer to failed and appends an error-role message so
// the session history reflects what the user observed.
func (a *Assembler) Fail(buffer *StreamBuffer, streamErr error) (chat.Message, error) {
	if _, err := a.finish(buffer, StateFailed); err != nil {
		return chat.Message{}, err
	}

	msg := chat.NewErrorMessage(streamErr.Error()).
		WithProvider(buffer.provider, buffer.model)
	a.append(buffer.sessionID, msg)
	return msg, nil
}

// finish performs the terminal transition and removes the buffer from the
// active set. A buffer that is already terminal is caller misuse and is
// reported, not silently accepted.
func (a *Assembler) finish(buffer *StreamBuffer, state BufferState) (string, error) {
	buffer.mu.Lock()
	if buffer.state.IsTerminal() {
		buffer.mu.Unlock()
		return "", ErrBufferAlreadyTerminal
	}
	buffer.state = state
	raw := buffer.raw.String()
	buffer.mu.Unlock()

	a.mu.Lock()
	if a.active[buffer.sessionID] == buffer {
		delete(a.active, buffer.sessionID)
	}
	a.mu.Unlock()
	return raw, nil
}

// append adds the finalized message to the session. A session that vanished
// mid-stream orphans the buffer; the message is dropped with a log entry
// rather than resurrecting the session.
func (a *Assembler) append(sessionID string, msg chat.Message) {
	if a.sessions == nil {
		return
	}
	if err := a.sessions.Append(sessionID, msg); err != nil {
		a.log.Warn("dropping finalized message, session %s is gone: %v", sessionID, err)
	}
}
