package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// GormDealRepository implements deal.DealRepository using GORM
type GormDealRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormDealRepository creates a new GORM deal repository
func NewGormDealRepository(db *gorm.DB, clock shared.Clock) *GormDealRepository {
	return &GormDealRepository{db: db, clock: clock}
}

// FindByID retrieves a deal by id
func (r *GormDealRepository) FindByID(ctx context.Context, id shared.ID) (*deal.Deal, error) {
	var model DealModel
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("deal", id.String())
		}
		return nil, shared.NewTransientDependencyError("failed to find deal", result.Error)
	}
	return r.modelToEntity(&model)
}

// Save persists the full deal row (upsert)
func (r *GormDealRepository) Save(ctx context.Context, d *deal.Deal) error {
	model, err := r.entityToModel(d)
	if err != nil {
		return fmt.Errorf("failed to convert deal to model: %w", err)
	}
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return shared.NewTransientDependencyError("failed to save deal", result.Error)
	}
	return nil
}

// modelToEntity converts a database row back into the domain aggregate.
// A config blob that fails to decode yields a deal with a nil config so
// the pipeline can rebuild from the requisition instead of failing.
func (r *GormDealRepository) modelToEntity(model *DealModel) (*deal.Deal, error) {
	var cfg *deal.NegotiationConfig
	if model.ConfigJSON != "" {
		decoded, err := deal.DecodeConfig([]byte(model.ConfigJSON))
		if err == nil {
			cfg = decoded
		}
	}

	var state *deal.NegotiationState
	if model.StateJSON != "" {
		state = &deal.NegotiationState{}
		if err := json.Unmarshal([]byte(model.StateJSON), state); err != nil {
			return nil, shared.NewPermanentDependencyError("malformed negotiation state", err)
		}
	}

	latestVendorOffer, err := unmarshalOffer(model.LatestVendorOfferJSON)
	if err != nil {
		return nil, err
	}
	latestCounter, err := unmarshalOffer(model.LatestCounterJSON)
	if err != nil {
		return nil, err
	}

	return deal.RecoverDeal(
		shared.MustParseID(model.ID),
		model.Title,
		deal.Mode(model.Mode),
		deal.Status(model.Status),
		model.Round,
		deal.Priority(model.Priority),
		parseIDOrZero(model.BuyerID),
		parseIDOrZero(model.VendorID),
		parseIDOrZero(model.RequisitionID),
		parseIDOrZero(model.ContractID),
		cfg,
		state,
		latestVendorOffer,
		latestCounter,
		model.LatestUtility,
		deal.Action(model.LatestAction),
		model.Degraded,
		model.CreatedAt,
		model.LastMessageAt,
		model.ArchivedAt,
		model.DeletedAt,
		r.clock,
	), nil
}

// entityToModel converts the domain aggregate to its database row
func (r *GormDealRepository) entityToModel(d *deal.Deal) (*DealModel, error) {
	model := &DealModel{
		ID:            d.ID().String(),
		Title:         d.Title(),
		Mode:          string(d.Mode()),
		Status:        string(d.Status()),
		Round:         d.Round(),
		Priority:      string(d.Priority()),
		BuyerID:       d.BuyerID().String(),
		VendorID:      d.VendorID().String(),
		RequisitionID: idStringOrEmpty(d.RequisitionID()),
		ContractID:    idStringOrEmpty(d.ContractID()),
		LatestUtility: d.LatestUtility(),
		LatestAction:  string(d.LatestAction()),
		Degraded:      d.Degraded(),
		CreatedAt:     d.CreatedAt(),
		LastMessageAt: d.LastMessageAt(),
		ArchivedAt:    d.ArchivedAt(),
		DeletedAt:     d.DeletedAt(),
	}

	if cfg := d.Config(); cfg != nil {
		raw, err := deal.EncodeConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
		model.ConfigJSON = string(raw)
	}
	if state := d.State(); state != nil {
		raw, err := json.Marshal(state)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal state: %w", err)
		}
		model.StateJSON = string(raw)
	}

	var err error
	if model.LatestVendorOfferJSON, err = marshalOffer(d.LatestVendorOffer()); err != nil {
		return nil, err
	}
	if model.LatestCounterJSON, err = marshalOffer(d.LatestCounter()); err != nil {
		return nil, err
	}
	return model, nil
}

func marshalOffer(offer *deal.Offer) (string, error) {
	if offer == nil {
		return "", nil
	}
	raw, err := json.Marshal(offer)
	if err != nil {
		return "", fmt.Errorf("failed to marshal offer: %w", err)
	}
	return string(raw), nil
}

func unmarshalOffer(raw string) (*deal.Offer, error) {
	if raw == "" {
		return nil, nil
	}
	offer := &deal.Offer{}
	if err := json.Unmarshal([]byte(raw), offer); err != nil {
		return nil, shared.NewPermanentDependencyError("malformed offer snapshot", err)
	}
	return offer, nil
}

func parseIDOrZero(raw string) shared.ID {
	if raw == "" {
		return shared.ID{}
	}
	id, err := shared.ParseID(raw)
	if err != nil {
		return shared.ID{}
	}
	return id
}

func idStringOrEmpty(id shared.ID) string {
	if id.IsZero() {
		return ""
	}
	return id.String()
}
