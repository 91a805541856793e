// Package gateway wraps the hosted chat-completion API that produces
// all generated text in the application.
package gateway

import (
	"context"

	"github.com/avereyes/promptdesk/internal/domain"
)

// CompletionRequest carries one call to the gateway. Zero values for
// Temperature and MaxTokens fall back to the client's configured
// defaults.
type CompletionRequest struct {
	Messages    []domain.Turn
	Temperature float64
	MaxTokens   int
}

// Client is the single operation the application needs from the
// external AI service: role-tagged messages in, generated text out.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
