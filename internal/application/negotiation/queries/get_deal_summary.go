package queries

import (
	"context"
	"fmt"

	"github.com/yug-shah0106/accordo-engine/internal/application/common"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/negotiation"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// GetDealSummaryQuery returns the current negotiation posture of a deal:
// latest offer, utility trajectory and behavioral signals
type GetDealSummaryQuery struct {
	DealID shared.ID

	// RenderDocument additionally produces the summary document via the
	// Reporter capability
	RenderDocument bool
}

// GetDealSummaryResponse is the assembled summary
type GetDealSummaryResponse struct {
	Deal           *deal.Deal
	CurrentOffer   *deal.Offer
	CurrentUtility *float64
	UtilityHistory []float64
	Signals        *negotiation.BehavioralSignals
	MesoRounds     []*deal.MesoRound
	Document       []byte
}

// GetDealSummaryHandler handles summary queries
type GetDealSummaryHandler struct {
	store    deal.Store
	reporter common.Reporter
}

// NewGetDealSummaryHandler creates a summary query handler. The reporter
// is optional; without it RenderDocument is ignored.
func NewGetDealSummaryHandler(store deal.Store, reporter common.Reporter) *GetDealSummaryHandler {
	return &GetDealSummaryHandler{store: store, reporter: reporter}
}

// Handle executes the summary query
func (h *GetDealSummaryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetDealSummaryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	d, err := h.store.Deals().FindByID(ctx, query.DealID)
	if err != nil {
		return nil, err
	}
	messages, err := h.store.Messages().ListByDeal(ctx, d.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	mesoRounds, err := h.store.MesoRounds().ListByDeal(ctx, d.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load meso rounds: %w", err)
	}

	state := d.State()
	response := &GetDealSummaryResponse{
		Deal:           d,
		CurrentOffer:   d.LatestVendorOffer(),
		CurrentUtility: d.LatestUtility(),
		UtilityHistory: state.UtilityHistory,
		MesoRounds:     mesoRounds,
	}

	if len(state.ParameterHistories[deal.FieldTotalPrice]) > 0 {
		signals := negotiation.ComputeSignals(
			state.ParameterHistories[deal.FieldTotalPrice],
			pmCounterPrices(messages),
			latestVendorText(messages))
		response.Signals = &signals
	}

	if query.RenderDocument && h.reporter != nil {
		doc, err := h.reporter.RenderSummary(ctx, d, messages)
		if err != nil {
			// The summary is still useful without the document
			common.LoggerFromContext(ctx).Log("warn", "summary document render failed", map[string]interface{}{
				"deal_id": d.ID().String(),
				"error":   err.Error(),
			})
		} else {
			response.Document = doc
		}
	}

	return response, nil
}

func pmCounterPrices(messages []*deal.Message) []float64 {
	var out []float64
	for _, m := range messages {
		if m.Role != deal.RoleAccordo || m.Decision == nil {
			continue
		}
		if c := m.Decision.CounterOffer; c != nil && c.TotalPrice != nil {
			out = append(out, *c.TotalPrice)
		}
	}
	return out
}

func latestVendorText(messages []*deal.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == deal.RoleVendor {
			return messages[i].Content
		}
	}
	return ""
}
