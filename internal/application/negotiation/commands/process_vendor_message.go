package commands

import (
	"context"
	"fmt"

	"github.com/yug-shah0106/accordo-engine/internal/application/common"
	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/services"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// ProcessVendorMessageCommand runs both pipeline phases back to back
// under one per-deal lock: the vendor message is saved and the PM
// response committed before another message for the same deal can
// interleave.
type ProcessVendorMessageCommand struct {
	DealID  shared.ID
	Content string
}

// ProcessVendorMessageResponse carries both phases' results
type ProcessVendorMessageResponse struct {
	VendorMessage *deal.Message
	PMMessage     *deal.Message
	Decision      *deal.Decision
	Deal          *deal.Deal
}

// ProcessVendorMessageHandler chains Phase-1 and Phase-2
type ProcessVendorMessageHandler struct {
	locks  *services.DealLockTable
	phase1 *SaveVendorMessageHandler
	phase2 *GeneratePMResponseHandler
}

// NewProcessVendorMessageHandler creates the combined pipeline handler
func NewProcessVendorMessageHandler(locks *services.DealLockTable, phase1 *SaveVendorMessageHandler, phase2 *GeneratePMResponseHandler) *ProcessVendorMessageHandler {
	return &ProcessVendorMessageHandler{locks: locks, phase1: phase1, phase2: phase2}
}

// Handle executes both phases while holding the per-deal lock
func (h *ProcessVendorMessageHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ProcessVendorMessageCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	h.locks.Lock(cmd.DealID)
	defer h.locks.Unlock(cmd.DealID)

	saved, err := h.phase1.HandleLocked(ctx, &SaveVendorMessageCommand{
		DealID:  cmd.DealID,
		Content: cmd.Content,
	})
	if err != nil {
		return nil, err
	}

	responded, err := h.phase2.HandleLocked(ctx, &GeneratePMResponseCommand{DealID: cmd.DealID})
	if err != nil {
		return nil, err
	}

	return &ProcessVendorMessageResponse{
		VendorMessage: saved.Message,
		PMMessage:     responded.Message,
		Decision:      responded.Decision,
		Deal:          responded.Deal,
	}, nil
}
