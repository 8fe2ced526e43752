package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yug-shah0106/accordo-engine/internal/adapters/persistence"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
	"github.com/yug-shah0106/accordo-engine/test/helpers"
)

func TestGormRequisitionRepository_SaveAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRequisitionRepository(db)
	req := &deal.Requisition{
		ID:       shared.NewID(),
		Currency: deal.CurrencyUSD,
		Products: []deal.RequisitionProduct{
			{Name: "Rack server", Quantity: 4, UnitTargetPrice: 200},
			{Name: "PDU", Quantity: 2, UnitTargetPrice: 100},
		},
	}
	require.NoError(t, repo.Save(context.Background(), req))

	// Act
	found, err := repo.FindByID(context.Background(), req.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, deal.CurrencyUSD, found.Currency)
	require.Len(t, found.Products, 2)
	assert.Equal(t, "Rack server", found.Products[0].Name)
	assert.Equal(t, 1000.0, found.TargetTotal())
}

func TestGormRequisitionRepository_FindMissingReturnsNotFound(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormRequisitionRepository(db)

	_, err := repo.FindByID(context.Background(), shared.NewID())

	assert.True(t, shared.IsNotFound(err))
}

func TestGormVendorProfileRepository_MissingProfileIsNil(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormVendorProfileRepository(db)

	profile, err := repo.FindByVendor(context.Background(), shared.NewID())

	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestGormVendorProfileRepository_UpsertReplacesRow(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormVendorProfileRepository(db)
	vendorID := shared.NewID()
	ctx := context.Background()

	profile := &deal.VendorProfile{
		VendorID:          vendorID,
		DealCount:         2,
		AcceptedCount:     1,
		MeanFinalDiscount: 0.05,
		TypicalFinalTerms: "Net 60",
		Behavior:          deal.BehaviorCooperative,
	}
	require.NoError(t, repo.Upsert(ctx, profile))

	// Act - fold another accepted deal in and upsert again
	profile.RecordOutcome(true, 0.03, "Net 90")
	require.NoError(t, repo.Upsert(ctx, profile))

	// Assert
	found, err := repo.FindByVendor(ctx, vendorID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 3, found.DealCount)
	assert.Equal(t, 2, found.AcceptedCount)
	assert.Equal(t, "Net 90", found.TypicalFinalTerms)
	assert.InDelta(t, 2.0/3.0, found.AcceptRate(), 1e-9)
}
