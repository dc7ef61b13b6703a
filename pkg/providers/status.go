package providers

import "time"

// ProviderStatus is the current terminal classification of the most recent
// outcome recorded for a provider. It is a single value, not a log.
type ProviderStatus string

const (
	// StatusConnected means the provider answered its last call
	StatusConnected ProviderStatus = "connected"
	// StatusUnconfigured means no API key has been configured
	StatusUnconfigured ProviderStatus = "unconfigured"
	// StatusAuthError covers HTTP 401/403 responses
	StatusAuthError ProviderStatus = "auth_error"
	// StatusNetworkError covers transport failures (DNS, connect, reset, timeout)
	StatusNetworkError ProviderStatus = "network_error"
	// StatusAPIError covers rate limits, server errors and other non-2xx responses
	StatusAPIError ProviderStatus = "api_error"
	// StatusDisabled means the provider was administratively disabled
	StatusDisabled ProviderStatus = "disabled"
	// StatusUnknown is the fallback for unclassifiable outcomes
	StatusUnknown ProviderStatus = "unknown"
)

// Icon returns a glyph for the status, for presentation surfaces
func (s ProviderStatus) Icon() string {
	switch s {
	case StatusConnected:
		return "✅"
	case StatusUnconfigured:
		return "⚙️"
	case StatusAuthError:
		return "🔑"
	case StatusNetworkError:
		return "🌐"
	case StatusAPIError:
		return "⚠️"
	case StatusDisabled:
		return "⏸️"
	default:
		return "❓"
	}
}

// Description returns a short human-readable status description
func (s ProviderStatus) Description() string {
	switch s {
	case StatusConnected:
		return "Connected"
	case StatusUnconfigured:
		return "Not configured"
	case StatusAuthError:
		return "Authentication error"
	case StatusNetworkError:
		return "Network error"
	case StatusAPIError:
		return "API error"
	case StatusDisabled:
		return "Disabled"
	default:
		return "Unknown status"
	}
}

// IsError reports whether the status represents a failed provider
func (s ProviderStatus) IsError() bool {
	return s == StatusAuthError || s == StatusNetworkError || s == StatusAPIError
}

// StatusRecord is an immutable snapshot of one provider's connectivity state.
// Records are owned by the Registry; everything handed out is a copy.
type StatusRecord struct {
	ProviderID    string         `json:"provider_id"`
	ProviderName  string         `json:"provider_name"`
	Status        ProviderStatus `json:"status"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	ErrorCode     int            `json:"error_code,omitempty"`
	LastCheckedAt time.Time      `json:"last_checked_at"`
	LastLatencyMs int64          `json:"last_latency_ms,omitempty"`
	Suggestions   []string       `json:"suggestions,omitempty"`
}

// clone returns a deep copy so callers can never alias registry state
func (r StatusRecord) clone() StatusRecord {
	out := r
	if len(r.Suggestions) > 0 {
		out.Suggestions = make([]string, len(r.Suggestions))
		copy(out.Suggestions, r.Suggestions)
	}
	return out
}

// Snapshot is an immutable copy of all current status records, in the order
// the providers were first seen
type Snapshot []StatusRecord

// Outcome describes the result of one provider call attempt, or of the
// pre-call checks that short-circuit it.
type Outcome struct {
	// OK is true when the call completed with a 2xx response
	OK bool
	// HTTPStatus is the response status code, zero when no response arrived
	HTTPStatus int
	// TransportErr is set when the call failed before any HTTP response
	TransportErr error
	// ErrorMessage carries the provider's own error text, if any
	ErrorMessage string
	// Unconfigured is set when no API key exists; checked before any call
	Unconfigured bool
	// Disabled is set when the provider is administratively disabled
	Disabled bool
	// LatencyMs is the observed round-trip time for completed calls
	LatencyMs int64
}
