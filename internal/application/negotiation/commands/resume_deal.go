package commands

import (
	"context"
	"fmt"

	"github.com/yug-shah0106/accordo-engine/internal/application/common"
	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/services"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// ResumeDealCommand returns an escalated deal to negotiation. This is
// the only path out of a terminal status.
type ResumeDealCommand struct {
	DealID shared.ID
}

// ResumeDealResponse carries the resumed deal
type ResumeDealResponse struct {
	Deal *deal.Deal
}

// ResumeDealHandler handles explicit resume requests
type ResumeDealHandler struct {
	store deal.Store
	locks *services.DealLockTable
}

// NewResumeDealHandler creates a resume handler
func NewResumeDealHandler(store deal.Store, locks *services.DealLockTable) *ResumeDealHandler {
	return &ResumeDealHandler{store: store, locks: locks}
}

// Handle executes the resume command
func (h *ResumeDealHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ResumeDealCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	h.locks.Lock(cmd.DealID)
	defer h.locks.Unlock(cmd.DealID)

	d, err := h.store.Deals().FindByID(ctx, cmd.DealID)
	if err != nil {
		return nil, err
	}
	if err := d.Resume(); err != nil {
		return nil, err
	}
	if err := h.store.Deals().Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save deal: %w", err)
	}

	common.LoggerFromContext(ctx).Log("info", "deal resumed", map[string]interface{}{
		"deal_id": d.ID().String(),
		"round":   d.Round(),
	})

	return &ResumeDealResponse{Deal: d}, nil
}
