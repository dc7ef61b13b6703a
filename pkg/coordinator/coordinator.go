// Package coordinator is the composition root for the connectivity and
// streaming core: it owns the provider status registry, the status notifier,
// the session registry and the stream assembler, and exposes the inbound and
// outbound surfaces the adapter and presentation layers integrate against.
package coordinator

import (
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/chat"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/logger"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/providers"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/stream"
)

// Coordinator wires the core components together. Status recording and
// streaming are independent domains: neither ever blocks the other.
type Coordinator struct {
	notifier  *providers.Notifier
	registry  *providers.Registry
	sessions  *chat.SessionRegistry
	assembler *stream.Assembler
	log       *logger.Logger
}

// New constructs a Coordinator with explicitly-created components. There is
// no global instance; the caller owns the lifecycle.
func New(log *logger.Logger) *Coordinator {
	if log == nil {
		log = logger.Discard()
	}

	notifier := providers.NewNotifier(log)
	sessions := chat.NewSessionRegistry(log)

	return &Coordinator{
		notifier:  notifier,
		registry:  providers.NewRegistry(notifier, log),
		sessions:  sessions,
		assembler: stream.NewAssembler(sessions, log),
		log:       log.WithComponent("coordinator"),
	}
}

// Providers returns the provider status registry
func (c *Coordinator) Providers() *providers.Registry { return c.registry }

// Sessions returns the session registry
func (c *Coordinator) Sessions() *chat.SessionRegistry { return c.sessions }

// Assembler returns the stream assembler
func (c *Coordinator) Assembler() *stream.Assembler { return c.assembler }

// ProviderOutcome records the result of one provider call attempt
func (c *Coordinator) ProviderOutcome(providerID, providerName string, outcome providers.Outcome) providers.StatusRecord {
	return c.registry.RecordOutcome(providerID, providerName, outcome)
}

// OnStatusChange subscribes to status snapshots; the latest snapshot is
// replayed immediately
func (c *Coordinator) OnStatusChange(fn providers.Subscriber) providers.Subscription {
	return c.notifier.Subscribe(fn)
}

// OnSessionChanged subscribes to current-session changes
func (c *Coordinator) OnSessionChanged(fn chat.SessionListener) {
	c.sessions.OnSessionChanged(fn)
}

// OnMessageAppended subscribes to appended messages across all sessions
func (c *Coordinator) OnMessageAppended(fn chat.MessageListener) {
	c.sessions.OnMessageAppended(fn)
}

// UserInput appends a user message to the session. An empty session id
// targets the current session (auto-created at first use).
func (c *Coordinator) UserInput(sessionID, text, providerID string) (chat.Message, error) {
	if sessionID == "" {
		sessionID = c.sessions.Current().ID
	}

	msg := chat.NewUserMessage(text)
	if providerID != "" {
		msg.Provider = providerID
	}
	if err := c.sessions.Append(sessionID, msg); err != nil {
		return chat.Message{}, err
	}
	return msg, nil
}

// BeginStream opens the streaming buffer for an assistant response in the
// session
func (c *Coordinator) BeginStream(sessionID, providerID, model string) (*stream.StreamBuffer, error) {
	return c.assembler.Begin(sessionID, providerID, model)
}

// StreamFragment routes one fragment to the session's active buffer.
// Fragments for sessions without an active stream are dropped; this covers
// transports that keep emitting briefly after a local cancel.
func (c *Coordinator) StreamFragment(sessionID, text string) {
	buffer, ok := c.assembler.ActiveBuffer(sessionID)
	if !ok {
		c.log.Debug("fragment for session %s dropped, no active stream", sessionID)
		return
	}
	c.assembler.AppendFragment(buffer, text)
}

// StreamEnd terminates the session's active stream: on success the
// assembled message is appended, on failure an error-role message is.
func (c *Coordinator) StreamEnd(sessionID string, streamErr error, meta chat.MessageMetadata) (chat.Message, error) {
	buffer, ok := c.assembler.ActiveBuffer(sessionID)
	if !ok {
		return chat.Message{}, stream.ErrNoActiveStream
	}
	if streamErr != nil {
		return c.assembler.Fail(buffer, streamErr)
	}
	return c.assembler.Complete(buffer, meta)
}

// CancelStream cancels the session's active stream. Subsequent fragments
// for the stream are dropped immediately, independent of the provider's own
// cancel latency.
func (c *Coordinator) CancelStream(sessionID, reason string) error {
	buffer, ok := c.assembler.ActiveBuffer(sessionID)
	if !ok {
		return stream.ErrNoActiveStream
	}
	return c.assembler.Cancel(buffer, reason)
}
