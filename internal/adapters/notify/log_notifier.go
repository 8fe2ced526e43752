package notify

import (
	"context"
	"fmt"

	"github.com/yug-shah0106/accordo-engine/internal/application/common"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// LogNotifier implements the Notifier capability by writing to the
// context logger. Real email delivery sits behind the same interface;
// this adapter keeps the pipeline's hook path exercised without SMTP.
type LogNotifier struct{}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// SendDealCreated records the deal-created notification
func (n *LogNotifier) SendDealCreated(ctx context.Context, d *deal.Deal) common.NotifyResult {
	return n.emit(ctx, "deal_created", d, map[string]interface{}{
		"title":    d.Title(),
		"priority": string(d.Priority()),
	})
}

// SendContinuedNegotiation records the round-completed notification
func (n *LogNotifier) SendContinuedNegotiation(ctx context.Context, d *deal.Deal, round int) common.NotifyResult {
	return n.emit(ctx, "continued_negotiation", d, map[string]interface{}{
		"round": round,
	})
}

// SendPmTerminalStatus records the terminal-status notification
func (n *LogNotifier) SendPmTerminalStatus(ctx context.Context, d *deal.Deal, decision *deal.Decision) common.NotifyResult {
	return n.emit(ctx, "pm_terminal_status", d, map[string]interface{}{
		"status":  string(d.Status()),
		"action":  string(decision.Action),
		"utility": decision.UtilityScore,
	})
}

// SendDealSummary records the summary delivery
func (n *LogNotifier) SendDealSummary(ctx context.Context, d *deal.Deal, summary []byte) common.NotifyResult {
	return n.emit(ctx, "deal_summary", d, map[string]interface{}{
		"bytes": len(summary),
	})
}

func (n *LogNotifier) emit(ctx context.Context, kind string, d *deal.Deal, metadata map[string]interface{}) common.NotifyResult {
	metadata["deal_id"] = d.ID().String()
	common.LoggerFromContext(ctx).Log("info", fmt.Sprintf("notification: %s", kind), metadata)
	return common.NotifyResult{
		Success:   true,
		MessageID: shared.NewID().String(),
	}
}
