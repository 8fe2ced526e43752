package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// GormVendorProfileRepository implements deal.VendorProfileRepository using GORM
type GormVendorProfileRepository struct {
	db *gorm.DB
}

// NewGormVendorProfileRepository creates a new GORM vendor profile repository
func NewGormVendorProfileRepository(db *gorm.DB) *GormVendorProfileRepository {
	return &GormVendorProfileRepository{db: db}
}

// FindByVendor returns nil when the vendor has no profile yet
func (r *GormVendorProfileRepository) FindByVendor(ctx context.Context, vendorID shared.ID) (*deal.VendorProfile, error) {
	var model VendorProfileModel
	result := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID.String()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, shared.NewTransientDependencyError("failed to find vendor profile", result.Error)
	}

	return &deal.VendorProfile{
		VendorID:          shared.MustParseID(model.VendorID),
		DealCount:         model.DealCount,
		AcceptedCount:     model.AcceptedCount,
		MeanFinalDiscount: model.MeanFinalDiscount,
		TypicalFinalTerms: model.TypicalFinalTerms,
		Behavior:          deal.BehaviorProfile(model.Behavior),
	}, nil
}

// Upsert creates or replaces the vendor's profile row
func (r *GormVendorProfileRepository) Upsert(ctx context.Context, profile *deal.VendorProfile) error {
	model := &VendorProfileModel{
		VendorID:          profile.VendorID.String(),
		DealCount:         profile.DealCount,
		AcceptedCount:     profile.AcceptedCount,
		MeanFinalDiscount: profile.MeanFinalDiscount,
		TypicalFinalTerms: profile.TypicalFinalTerms,
		Behavior:          string(profile.Behavior),
	}
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return shared.NewTransientDependencyError("failed to save vendor profile", result.Error)
	}
	return nil
}
