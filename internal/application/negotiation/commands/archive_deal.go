package commands

import (
	"context"
	"fmt"

	"github.com/yug-shah0106/accordo-engine/internal/application/common"
	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/services"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// ArchiveDealCommand sets a deal's soft archive flag; with Delete it
// soft-deletes instead. Neither removes rows.
type ArchiveDealCommand struct {
	DealID shared.ID
	Delete bool
}

// ArchiveDealResponse carries the updated deal
type ArchiveDealResponse struct {
	Deal *deal.Deal
}

// ArchiveDealHandler handles archive and soft-delete requests
type ArchiveDealHandler struct {
	store deal.Store
	locks *services.DealLockTable
}

// NewArchiveDealHandler creates an archive handler
func NewArchiveDealHandler(store deal.Store, locks *services.DealLockTable) *ArchiveDealHandler {
	return &ArchiveDealHandler{store: store, locks: locks}
}

// Handle executes the archive command
func (h *ArchiveDealHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ArchiveDealCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	h.locks.Lock(cmd.DealID)
	defer h.locks.Unlock(cmd.DealID)

	d, err := h.store.Deals().FindByID(ctx, cmd.DealID)
	if err != nil {
		return nil, err
	}
	if cmd.Delete {
		d.SoftDelete()
	} else {
		d.Archive()
	}
	if err := h.store.Deals().Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save deal: %w", err)
	}

	return &ArchiveDealResponse{Deal: d}, nil
}
