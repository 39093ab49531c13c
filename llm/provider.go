package llm

import (
	"context"
	"errors"
)

// ErrUnavailable marks the completion service as absent or unreachable.
// Consumers treat it exactly like a transport failure: degrade, never
// propagate to the user.
var ErrUnavailable = errors.New("completion service unavailable")

// Request is one completion call. Zero MaxTokens/Temperature fall back to
// the provider's configured defaults.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// Provider abstracts the remote text-completion collaborator.
type Provider interface {
	GetProviderType() string
	Complete(ctx context.Context, req Request) (string, error)
}
