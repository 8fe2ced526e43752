package commands

import (
	"context"
	"fmt"

	"github.com/yug-shah0106/accordo-engine/internal/application/common"
	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/services"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/negotiation"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// SaveVendorMessageCommand is Phase-1 of the pipeline: parse the vendor
// text, accumulate it with the prior offer and persist the message for
// the in-progress round. The deal's round counter does not advance here.
type SaveVendorMessageCommand struct {
	DealID  shared.ID
	Content string
}

// SaveVendorMessageResponse carries the persisted message and the
// running accumulation
type SaveVendorMessageResponse struct {
	Message     *deal.Message
	Accumulated *deal.AccumulatedOffer
}

// SaveVendorMessageHandler handles Phase-1 vendor message saves
type SaveVendorMessageHandler struct {
	store  deal.Store
	locks  *services.DealLockTable
	warmer *services.SuggestionWarmer
	clock  shared.Clock
}

// NewSaveVendorMessageHandler creates a Phase-1 handler
func NewSaveVendorMessageHandler(store deal.Store, locks *services.DealLockTable, warmer *services.SuggestionWarmer, clock shared.Clock) *SaveVendorMessageHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &SaveVendorMessageHandler{store: store, locks: locks, warmer: warmer, clock: clock}
}

// Handle executes Phase-1 under the per-deal lock
func (h *SaveVendorMessageHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SaveVendorMessageCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	h.locks.Lock(cmd.DealID)
	defer h.locks.Unlock(cmd.DealID)

	return h.HandleLocked(ctx, cmd)
}

// HandleLocked executes Phase-1 assuming the caller holds the per-deal
// lock. The combined pipeline command uses it to keep the lock held
// through Phase-2.
func (h *SaveVendorMessageHandler) HandleLocked(ctx context.Context, cmd *SaveVendorMessageCommand) (*SaveVendorMessageResponse, error) {
	d, err := h.store.Deals().FindByID(ctx, cmd.DealID)
	if err != nil {
		return nil, err
	}
	if !d.IsNegotiating() {
		return nil, shared.NewConflictError(
			fmt.Sprintf("deal %s does not accept vendor messages", d.ID()), string(d.Status()))
	}

	parser := negotiation.NewOfferParser(h.requisitionCurrency(ctx, d))
	partial := parser.Parse(cmd.Content)

	prior, err := h.priorAccumulation(ctx, d.ID())
	if err != nil {
		return nil, err
	}

	round := d.Round() + 1
	msg, err := deal.NewVendorMessage(d.ID(), round, cmd.Content, partial, nil, h.clock.Now())
	if err != nil {
		return nil, err
	}
	acc := negotiation.Accumulate(prior, partial, msg.ID)
	msg.Accumulated = acc

	err = h.store.Transaction(ctx, func(tx deal.Store) error {
		if err := tx.Messages().Add(ctx, msg); err != nil {
			return fmt.Errorf("failed to save vendor message: %w", err)
		}
		d.RecordVendorOffer(acc.Offer.Clone())
		if err := tx.Deals().Save(ctx, d); err != nil {
			return fmt.Errorf("failed to save deal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log("info", "vendor message saved", map[string]interface{}{
		"deal_id":  d.ID().String(),
		"round":    round,
		"complete": acc.IsComplete,
		"fields":   acc.ProvidedFields,
	})

	if h.warmer != nil {
		h.warmer.Warm(ctx, d, round, acc)
	}

	return &SaveVendorMessageResponse{Message: msg, Accumulated: acc}, nil
}

// priorAccumulation loads the accumulation carried on the last vendor
// message, if any
func (h *SaveVendorMessageHandler) priorAccumulation(ctx context.Context, dealID shared.ID) (*deal.AccumulatedOffer, error) {
	last, err := h.store.Messages().FindLast(ctx, dealID, deal.RoleVendor, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load prior vendor message: %w", err)
	}
	if last == nil {
		return nil, nil
	}
	return last.Accumulated, nil
}

// requisitionCurrency resolves the currency vendor prices are quoted in;
// a missing requisition falls back to USD rather than failing the save
func (h *SaveVendorMessageHandler) requisitionCurrency(ctx context.Context, d *deal.Deal) deal.Currency {
	req, err := h.store.Requisitions().FindByID(ctx, d.RequisitionID())
	if err != nil || req == nil {
		return deal.CurrencyUSD
	}
	return req.Currency
}
