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

// GormRequisitionRepository implements deal.RequisitionRepository using GORM
type GormRequisitionRepository struct {
	db *gorm.DB
}

// NewGormRequisitionRepository creates a new GORM requisition repository
func NewGormRequisitionRepository(db *gorm.DB) *GormRequisitionRepository {
	return &GormRequisitionRepository{db: db}
}

// FindByID retrieves a requisition by id
func (r *GormRequisitionRepository) FindByID(ctx context.Context, id shared.ID) (*deal.Requisition, error) {
	var model RequisitionModel
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("requisition", id.String())
		}
		return nil, shared.NewTransientDependencyError("failed to find requisition", result.Error)
	}

	req := &deal.Requisition{
		ID:       shared.MustParseID(model.ID),
		Currency: deal.Currency(model.Currency),
	}
	if err := json.Unmarshal([]byte(model.ProductsJSON), &req.Products); err != nil {
		return nil, shared.NewPermanentDependencyError("malformed requisition products", err)
	}
	return req, nil
}

// Save persists a requisition (upsert)
func (r *GormRequisitionRepository) Save(ctx context.Context, req *deal.Requisition) error {
	products, err := json.Marshal(req.Products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}
	model := &RequisitionModel{
		ID:           req.ID.String(),
		Currency:     string(req.Currency),
		ProductsJSON: string(products),
	}
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return shared.NewTransientDependencyError("failed to save requisition", result.Error)
	}
	return nil
}
