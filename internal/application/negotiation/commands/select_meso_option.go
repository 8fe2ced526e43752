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

// SelectMesoOptionCommand records which bundle option the vendor picked.
// The selection feeds preference inference: favoring picks shift the
// inferred emphasis, repeated balanced picks trigger exploration.
type SelectMesoOptionCommand struct {
	DealID   shared.ID
	MesoID   shared.ID
	OptionID string
}

// SelectMesoOptionResponse carries the selected option
type SelectMesoOptionResponse struct {
	Option *deal.MesoOption
}

// SelectMesoOptionHandler handles vendor MESO selections
type SelectMesoOptionHandler struct {
	store deal.Store
	locks *services.DealLockTable
}

// NewSelectMesoOptionHandler creates a selection handler
func NewSelectMesoOptionHandler(store deal.Store, locks *services.DealLockTable) *SelectMesoOptionHandler {
	return &SelectMesoOptionHandler{store: store, locks: locks}
}

// Handle executes the selection command
func (h *SelectMesoOptionHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SelectMesoOptionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	h.locks.Lock(cmd.DealID)
	defer h.locks.Unlock(cmd.DealID)

	d, err := h.store.Deals().FindByID(ctx, cmd.DealID)
	if err != nil {
		return nil, err
	}

	rounds, err := h.store.MesoRounds().ListByDeal(ctx, d.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load meso rounds: %w", err)
	}
	var meso *deal.MesoRound
	for _, r := range rounds {
		if r.ID.Equals(cmd.MesoID) {
			meso = r
			break
		}
	}
	if meso == nil {
		return nil, shared.NewNotFoundError("meso round", cmd.MesoID.String())
	}
	option := meso.OptionByID(cmd.OptionID)
	if option == nil {
		return nil, shared.NewNotFoundError("meso option", cmd.OptionID)
	}

	newState := negotiation.RecordMesoSelection(d.State(), meso.Type, option.ID, option.Label, meso.Round)

	err = h.store.Transaction(ctx, func(tx deal.Store) error {
		if err := tx.MesoRounds().RecordSelection(ctx, meso.ID, option.ID); err != nil {
			return fmt.Errorf("failed to record selection: %w", err)
		}
		d.ReplaceState(newState)
		if err := tx.Deals().Save(ctx, d); err != nil {
			return fmt.Errorf("failed to save deal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log("info", "meso option selected", map[string]interface{}{
		"deal_id":   d.ID().String(),
		"meso_id":   meso.ID.String(),
		"option_id": option.ID,
		"label":     string(option.Label),
	})

	return &SelectMesoOptionResponse{Option: option}, nil
}
