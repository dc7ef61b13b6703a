package chat

import (
	"time"

	"github.com/google/uuid"
)

// SessionMetrics is the per-session roll-up of message accounting, updated on
// every append
type SessionMetrics struct {
	TotalCostUSD     float64        `json:"total_cost_usd"`
	TotalTokens      int            `json:"total_tokens"`
	TotalRequests    int            `json:"total_requests"`
	AverageLatencyMs float64        `json:"average_latency_ms"`
	ProviderUsage    map[string]int `json:"provider_usage,omitempty"`
	ModelUsage       map[string]int `json:"model_usage,omitempty"`
	LastActivity     time.Time      `json:"last_activity"`
}

// Session is one conversation thread: an append-only ordered message history
// plus lifecycle flags. Sessions are owned by the SessionRegistry; values
// handed out are copies and cannot alias registry state.
type Session struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Messages  []Message      `json:"messages"`
	CreatedAt time.Time      `json:"created_at"`
	IsCurrent bool           `json:"is_current"`
	Metrics   SessionMetrics `json:"metrics"`
}

func newSession(name string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Messages:  make([]Message, 0),
		CreatedAt: time.Now(),
		Metrics: SessionMetrics{
			ProviderUsage: make(map[string]int),
			ModelUsage:    make(map[string]int),
			LastActivity:  time.Now(),
		},
	}
}

// clone returns a deep copy safe to hand outside the registry
func (s *Session) clone() Session {
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	out.Metrics.ProviderUsage = copyCounts(s.Metrics.ProviderUsage)
	out.Metrics.ModelUsage = copyCounts(s.Metrics.ModelUsage)
	return out
}

func (s *Session) appendMessage(msg Message) {
	s.Messages = append(s.Messages, msg)
	s.rollUpMetrics(msg)
}

func (s *Session) rollUpMetrics(msg Message) {
	m := &s.Metrics

	m.TotalCostUSD += msg.Metadata.CostUSD
	m.TotalTokens += msg.Metadata.Tokens

	if msg.Metadata.LatencyMs > 0 {
		total := m.AverageLatencyMs*float64(m.TotalRequests) + float64(msg.Metadata.LatencyMs)
		m.TotalRequests++
		m.AverageLatencyMs = total / float64(m.TotalRequests)
	}

	if msg.Provider != "" {
		m.ProviderUsage[msg.Provider]++
	}
	if msg.Model != "" {
		m.ModelUsage[msg.Model]++
	}
	m.LastActivity = time.Now()
}

func (s *Session) clear() {
	s.Messages = s.Messages[:0]
	s.Metrics = SessionMetrics{
		ProviderUsage: make(map[string]int),
		ModelUsage:    make(map[string]int),
		LastActivity:  time.Now(),
	}
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
