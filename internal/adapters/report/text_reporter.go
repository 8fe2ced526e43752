package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
)

// TextReporter implements the Reporter capability with a plain-text
// rendering. PDF rendering sits behind the same interface.
type TextReporter struct{}

// NewTextReporter creates a text reporter
func NewTextReporter() *TextReporter {
	return &TextReporter{}
}

// RenderSummary produces a human-readable negotiation summary
func (r *TextReporter) RenderSummary(ctx context.Context, d *deal.Deal, messages []*deal.Message) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Negotiation Summary: %s\n", d.Title())
	fmt.Fprintf(&b, "Status: %s after %d round(s)\n", d.Status(), d.Round())
	if u := d.LatestUtility(); u != nil {
		fmt.Fprintf(&b, "Latest utility: %.3f\n", *u)
	}
	if offer := d.LatestVendorOffer(); offer != nil && !offer.IsEmpty() {
		fmt.Fprintf(&b, "Latest vendor position: %s\n", offer.Format())
	}
	if counter := d.LatestCounter(); counter != nil && !counter.IsEmpty() {
		fmt.Fprintf(&b, "Latest counter: %s\n", counter.Format())
	}

	b.WriteString("\nTranscript:\n")
	for _, m := range messages {
		fmt.Fprintf(&b, "[round %d] %s: %s\n", m.Round, m.Role, truncate(m.Content, 200))
		if m.Decision != nil {
			fmt.Fprintf(&b, "           decision=%s utility=%.3f reason=%s\n",
				m.Decision.Action, m.Decision.UtilityScore, m.Decision.Explainability.Reason)
		}
	}
	return []byte(b.String()), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
