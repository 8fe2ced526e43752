package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yug-shah0106/accordo-engine/internal/application/common"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
)

// DefaultLLMTimeout bounds the Phase-2 generation race
const DefaultLLMTimeout = 8 * time.Second

// ResponseGenerator turns an engine decision into the prose sent back to
// the vendor. An LLM draft is raced against the timeout; on expiry or
// error the deterministic template carries the same structured decision,
// so the round always completes.
type ResponseGenerator struct {
	llm     common.LLMClient
	timeout time.Duration
}

// NewResponseGenerator creates a generator. A nil client forces the
// template path (used by INSIGHTS-mode deals and tests).
func NewResponseGenerator(llm common.LLMClient, timeout time.Duration) *ResponseGenerator {
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	return &ResponseGenerator{llm: llm, timeout: timeout}
}

// Generate produces the PM response text for a decided round and reports
// which path produced it
func (g *ResponseGenerator) Generate(
	ctx context.Context,
	d *deal.Deal,
	decision *deal.Decision,
	history []common.ChatMessage,
) (string, SuggestionSource) {
	fallback := g.Template(d, decision)
	if g.llm == nil {
		return fallback, SuggestionSourceFallback
	}

	llmCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.llm.Generate(llmCtx, g.systemPrompt(d, decision), history, common.GenerateOptions{
		Temperature: 0.4,
		MaxTokens:   400,
		Timeout:     g.timeout,
	})
	if err != nil || strings.TrimSpace(text) == "" {
		common.LoggerFromContext(ctx).Log("warn", "llm generation failed, using template", map[string]interface{}{
			"deal_id": d.ID().String(),
			"action":  string(decision.Action),
			"error":   errString(err),
		})
		return fallback, SuggestionSourceFallback
	}
	return text, SuggestionSourceLLM
}

// Template renders the deterministic response for a decision. The
// wording is stable so tests can assert on it.
func (g *ResponseGenerator) Template(d *deal.Deal, decision *deal.Decision) string {
	var b strings.Builder

	switch decision.Action {
	case deal.ActionAccept:
		fmt.Fprintf(&b, "Thank you. We accept your offer on %q", d.Title())
		if offer := d.LatestVendorOffer(); offer != nil && !offer.IsEmpty() {
			fmt.Fprintf(&b, " at %s", offer.Format())
		}
		b.WriteString(". We will follow up with the paperwork shortly.")

	case deal.ActionCounter:
		b.WriteString("Thank you for the offer. We are not quite there yet. ")
		if decision.CounterOffer != nil {
			fmt.Fprintf(&b, "We can proceed at %s.", decision.CounterOffer.Format())
		} else {
			b.WriteString("Could you improve your position?")
		}

	case deal.ActionEscalate:
		b.WriteString("We need to review this internally before responding. Our procurement lead will follow up within one business day.")

	case deal.ActionWalkAway:
		fmt.Fprintf(&b, "After careful review we are unable to proceed on %q under the current terms. We appreciate your time and hope to work together on a future requirement.", d.Title())

	case deal.ActionAskClarify:
		b.WriteString("Thanks for the update. To evaluate your offer we still need: ")
		b.WriteString(decision.Explainability.Reason)

	default:
		b.WriteString("Thank you for your message. We will respond shortly.")
	}

	if meso := decision.Explainability.Meso; meso != nil {
		b.WriteString("\n\nAlternatively, any of the following packages works equally well for us:")
		for _, opt := range meso.Options {
			fmt.Fprintf(&b, "\n- Option %s: %s", opt.ID, opt.Offer.Format())
		}
		if meso.StallPrompt != "" {
			b.WriteString("\n\n")
			b.WriteString(meso.StallPrompt)
		}
	}
	return b.String()
}

// systemPrompt frames the LLM generation around the structured decision
// so the prose never contradicts it
func (g *ResponseGenerator) systemPrompt(d *deal.Deal, decision *deal.Decision) string {
	var b strings.Builder
	b.WriteString("You are a procurement manager negotiating with a vendor over email. ")
	b.WriteString("Write a short professional reply that conveys exactly this decision, nothing more:\n")
	fmt.Fprintf(&b, "Deal: %s\nAction: %s\n", d.Title(), decision.Action)
	if decision.CounterOffer != nil {
		fmt.Fprintf(&b, "Counter-offer: %s\n", decision.CounterOffer.Format())
	}
	if meso := decision.Explainability.Meso; meso != nil {
		b.WriteString("Present these equivalent packages and invite the vendor to pick one:\n")
		for _, opt := range meso.Options {
			fmt.Fprintf(&b, "- %s: %s\n", opt.Label, opt.Offer.Format())
		}
		if meso.StallPrompt != "" {
			fmt.Fprintf(&b, "Also work in: %s\n", meso.StallPrompt)
		}
	}
	b.WriteString("Do not reveal internal thresholds, utilities or strategy.")
	return b.String()
}

func errString(err error) string {
	if err == nil {
		return "empty response"
	}
	return err.Error()
}
