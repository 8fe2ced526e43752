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

// CreateDealCommand opens a new negotiation session. The config is
// derived from the requisition, overlaid with the wizard payload, and
// anchored against the vendor's acceptance history when deep enough.
type CreateDealCommand struct {
	Title       string
	Mode        deal.Mode
	Priority    deal.Priority
	BuyerID     shared.ID
	VendorID    shared.ID
	ContractID  shared.ID
	Requisition *deal.Requisition
	Wizard      *negotiation.WizardPayload
}

// CreateDealResponse carries the persisted deal
type CreateDealResponse struct {
	Deal *deal.Deal
}

// CreateDealHandler handles deal creation
type CreateDealHandler struct {
	store    deal.Store
	builder  *negotiation.ConfigBuilder
	hooks    *services.HookPool
	notifier common.Notifier
	clock    shared.Clock
}

// NewCreateDealHandler creates a create deal handler
func NewCreateDealHandler(store deal.Store, builder *negotiation.ConfigBuilder, hooks *services.HookPool, notifier common.Notifier, clock shared.Clock) *CreateDealHandler {
	return &CreateDealHandler{
		store:    store,
		builder:  builder,
		hooks:    hooks,
		notifier: notifier,
		clock:    clock,
	}
}

// Handle executes the create deal command
func (h *CreateDealHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CreateDealCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.Requisition == nil {
		return nil, shared.NewValidationError("requisition", "requisition is required")
	}

	cfg := h.builder.BuildFromRequisition(cmd.Requisition)
	h.builder.ApplyWizard(cfg, cmd.Wizard)

	profile, err := h.store.VendorProfiles().FindByVendor(ctx, cmd.VendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor profile: %w", err)
	}
	h.builder.ApplyHistoricalAnchor(cfg, profile)

	d, err := deal.NewDeal(cmd.Title, cmd.Mode, cmd.Priority,
		cmd.BuyerID, cmd.VendorID, cmd.Requisition.ID, cmd.ContractID, cfg, h.clock)
	if err != nil {
		return nil, err
	}

	err = h.store.Transaction(ctx, func(tx deal.Store) error {
		if err := tx.Requisitions().Save(ctx, cmd.Requisition); err != nil {
			return fmt.Errorf("failed to save requisition: %w", err)
		}
		if err := tx.Deals().Save(ctx, d); err != nil {
			return fmt.Errorf("failed to save deal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log("info", "deal created", map[string]interface{}{
		"deal_id":  d.ID().String(),
		"title":    d.Title(),
		"mode":     string(d.Mode()),
		"priority": string(d.Priority()),
	})

	if h.hooks != nil && h.notifier != nil {
		h.hooks.Submit(ctx, services.HookTask{
			Name: "deal-created-notification",
			Run: func(hookCtx context.Context) error {
				result := h.notifier.SendDealCreated(hookCtx, d)
				if !result.Success {
					return fmt.Errorf("notification failed: %s", result.Error)
				}
				return nil
			},
		})
	}

	return &CreateDealResponse{Deal: d}, nil
}
