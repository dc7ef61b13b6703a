package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role values for messages
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleError     = "error"
)

// MessageMetadata carries optional per-message accounting
type MessageMetadata struct {
	Tokens    int     `json:"tokens,omitempty"`
	CostUSD   float64 `json:"cost_usd,omitempty"`
	LatencyMs int64   `json:"latency_ms,omitempty"`
}

// Message is one finalized entry in a session's history. Messages are
// immutable once appended; corrections produce a new Message.
type Message struct {
	ID        string          `json:"id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Provider  string          `json:"provider,omitempty"`
	Model     string          `json:"model,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Metadata  MessageMetadata `json:"metadata,omitempty"`
}

func newMessage(role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user message with trimmed content
func NewUserMessage(content string) Message {
	return newMessage(RoleUser, strings.TrimSpace(content))
}

// NewAssistantMessage creates an assistant message
func NewAssistantMessage(content string) Message {
	return newMessage(RoleAssistant, content)
}

// NewSystemMessage creates a system message
func NewSystemMessage(content string) Message {
	return newMessage(RoleSystem, content)
}

// NewErrorMessage creates an error-role message
func NewErrorMessage(content string) Message {
	return newMessage(RoleError, content)
}

// WithProvider returns a copy attributed to a provider and model
func (m Message) WithProvider(provider, model string) Message {
	m.Provider = provider
	m.Model = model
	return m
}

// WithMetadata returns a copy carrying the given metadata
func (m Message) WithMetadata(meta MessageMetadata) Message {
	m.Metadata = meta
	return m
}

func (m Message) IsUser() bool      { return m.Role == RoleUser }
func (m Message) IsAssistant() bool { return m.Role == RoleAssistant }
func (m Message) IsSystem() bool    { return m.Role == RoleSystem }
func (m Message) IsError() bool     { return m.Role == RoleError }

func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}
