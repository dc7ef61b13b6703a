// Package llm adapts external AI completion providers to the connectivity
// core. Adapters never interpret HTTP status codes themselves; they hand raw
// call results to the providers package for classification.
package llm

import (
	"context"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/chat"
)

// Result summarizes one completed streaming call
type Result struct {
	Content      string
	PromptTokens int
	OutputTokens int
	LatencyMs    int64
}

// FragmentFunc receives incremental response fragments in arrival order
type FragmentFunc func(text string)

// Provider is a streaming completion backend for one configured provider
type Provider interface {
	// ID is the stable provider id (openai, anthropic, ...)
	ID() string
	// Name is the display name used in status records and suggestions
	Name() string
	// Model is the configured default model
	Model() string
	// Stream sends the conversation and streams the response through
	// onFragment, returning the final result
	Stream(ctx context.Context, history []chat.Message, onFragment FragmentFunc) (Result, error)
}
