package common

import (
	"context"
	"time"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
)

// ChatMessage is one turn of the conversation handed to the LLM
type ChatMessage struct {
	Role    string // "user" for vendor turns, "assistant" for buyer turns
	Content string
}

// GenerateOptions bound a single LLM generation
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// LLMClient generates negotiation prose. Errors are never fatal to the
// engine; callers fall back to deterministic templates.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, history []ChatMessage, opts GenerateOptions) (string, error)
}

// NotifyResult reports the outcome of a notification send. Notifier
// methods return it instead of an error so callers never have to handle
// delivery failures on the critical path.
type NotifyResult struct {
	Success   bool
	MessageID string
	Error     string
}

// Notifier delivers deal lifecycle notifications. Implementations must
// not panic and must not block beyond their own internal timeouts.
type Notifier interface {
	SendDealCreated(ctx context.Context, d *deal.Deal) NotifyResult
	SendContinuedNegotiation(ctx context.Context, d *deal.Deal, round int) NotifyResult
	SendPmTerminalStatus(ctx context.Context, d *deal.Deal, decision *deal.Decision) NotifyResult
	SendDealSummary(ctx context.Context, d *deal.Deal, summary []byte) NotifyResult
}

// Reporter renders a deal summary document
type Reporter interface {
	RenderSummary(ctx context.Context, d *deal.Deal, messages []*deal.Message) ([]byte, error)
}
