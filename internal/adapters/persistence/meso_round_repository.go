package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// GormMesoRoundRepository implements deal.MesoRoundRepository using GORM
type GormMesoRoundRepository struct {
	db *gorm.DB
}

// NewGormMesoRoundRepository creates a new GORM meso round repository
func NewGormMesoRoundRepository(db *gorm.DB) *GormMesoRoundRepository {
	return &GormMesoRoundRepository{db: db}
}

// Add persists a meso round
func (r *GormMesoRoundRepository) Add(ctx context.Context, round *deal.MesoRound) error {
	model, err := r.entityToModel(round)
	if err != nil {
		return fmt.Errorf("failed to convert meso round to model: %w", err)
	}
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return shared.NewTransientDependencyError("failed to save meso round", result.Error)
	}
	return nil
}

// ListByDeal returns all meso rounds for a deal ordered by round
func (r *GormMesoRoundRepository) ListByDeal(ctx context.Context, dealID shared.ID) ([]*deal.MesoRound, error) {
	var models []MesoRoundModel
	result := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID.String()).
		Order("round asc").
		Find(&models)
	if result.Error != nil {
		return nil, shared.NewTransientDependencyError("failed to list meso rounds", result.Error)
	}

	rounds := make([]*deal.MesoRound, 0, len(models))
	for i := range models {
		entity, err := r.modelToEntity(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert meso round %s: %w", models[i].ID, err)
		}
		rounds = append(rounds, entity)
	}
	return rounds, nil
}

// RecordSelection marks which option the vendor picked
func (r *GormMesoRoundRepository) RecordSelection(ctx context.Context, mesoID shared.ID, optionID string) error {
	result := r.db.WithContext(ctx).
		Model(&MesoRoundModel{}).
		Where("id = ?", mesoID.String()).
		Update("selected_option_id", optionID)
	if result.Error != nil {
		return shared.NewTransientDependencyError("failed to record selection", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("meso round", mesoID.String())
	}
	return nil
}

func (r *GormMesoRoundRepository) modelToEntity(model *MesoRoundModel) (*deal.MesoRound, error) {
	round := &deal.MesoRound{
		ID:               shared.MustParseID(model.ID),
		DealID:           shared.MustParseID(model.DealID),
		Round:            model.Round,
		Type:             deal.MesoType(model.Type),
		TargetUtility:    model.TargetUtility,
		Variance:         model.Variance,
		SelectedOptionID: model.SelectedOptionID,
	}
	if err := json.Unmarshal([]byte(model.OptionsJSON), &round.Options); err != nil {
		return nil, shared.NewPermanentDependencyError("malformed meso options", err)
	}
	if model.InferredPreferencesJSON != "" {
		if err := json.Unmarshal([]byte(model.InferredPreferencesJSON), &round.InferredPreferences); err != nil {
			return nil, shared.NewPermanentDependencyError("malformed inferred preferences", err)
		}
	}
	return round, nil
}

func (r *GormMesoRoundRepository) entityToModel(round *deal.MesoRound) (*MesoRoundModel, error) {
	options, err := json.Marshal(round.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal options: %w", err)
	}
	model := &MesoRoundModel{
		ID:               round.ID.String(),
		DealID:           round.DealID.String(),
		Round:            round.Round,
		Type:             string(round.Type),
		OptionsJSON:      string(options),
		TargetUtility:    round.TargetUtility,
		Variance:         round.Variance,
		SelectedOptionID: round.SelectedOptionID,
	}
	if round.InferredPreferences != nil {
		prefs, err := json.Marshal(round.InferredPreferences)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal inferred preferences: %w", err)
		}
		model.InferredPreferencesJSON = string(prefs)
	}
	return model, nil
}
