package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yug-shah0106/accordo-engine/internal/adapters/persistence"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
	"github.com/yug-shah0106/accordo-engine/test/helpers"
)

func TestGormDealRepository_SaveAndFindRoundTrip(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := fixtureClock()
	repo := persistence.NewGormDealRepository(db, clock)
	d := seedDeal(t, db, clock)

	state := deal.NewNegotiationState()
	price := 1100.0
	d.RecordVendorOffer(&deal.Offer{TotalPrice: &price, PaymentTerms: "Net 60"})
	counter := 950.0
	require.NoError(t, d.CompleteRound(1, &deal.Decision{
		Action:       deal.ActionCounter,
		UtilityScore: 0.52,
		CounterOffer: &deal.Offer{TotalPrice: &counter, PaymentTerms: "Net 90"},
	}, state))
	require.NoError(t, repo.Save(context.Background(), d))

	// Act
	found, err := repo.FindByID(context.Background(), d.ID())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, d.ID(), found.ID())
	assert.Equal(t, "Server racks Q3", found.Title())
	assert.Equal(t, deal.StatusNegotiating, found.Status())
	assert.Equal(t, 1, found.Round())
	assert.Equal(t, d.VendorID(), found.VendorID())

	require.NotNil(t, found.Config())
	assert.Equal(t, 850.0, found.Config().Price.Anchor)
	assert.Equal(t, 0.6, found.Config().Terms.Utilities["Net 60"])

	require.NotNil(t, found.State())
	require.NotNil(t, found.LatestVendorOffer())
	assert.Equal(t, 1100.0, *found.LatestVendorOffer().TotalPrice)
	require.NotNil(t, found.LatestCounter())
	assert.Equal(t, 950.0, *found.LatestCounter().TotalPrice)
	require.NotNil(t, found.LatestUtility())
	assert.Equal(t, 0.52, *found.LatestUtility())
	assert.Equal(t, deal.ActionCounter, found.LatestAction())
}

func TestGormDealRepository_FindMissingReturnsNotFound(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormDealRepository(db, fixtureClock())

	_, err := repo.FindByID(context.Background(), shared.NewID())

	assert.True(t, shared.IsNotFound(err))
}

func TestGormDealRepository_SaveIsUpsert(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := fixtureClock()
	repo := persistence.NewGormDealRepository(db, clock)
	d := seedDeal(t, db, clock)

	// Act - terminal transition then save again
	require.NoError(t, d.CompleteRound(1, &deal.Decision{Action: deal.ActionAccept, UtilityScore: 0.85}, deal.NewNegotiationState()))
	require.NoError(t, repo.Save(context.Background(), d))

	// Assert
	found, err := repo.FindByID(context.Background(), d.ID())
	require.NoError(t, err)
	assert.Equal(t, deal.StatusAccepted, found.Status())
	assert.Equal(t, 1, found.Round())
}

func TestGormDealRepository_UndecodableConfigYieldsNilConfig(t *testing.T) {
	// Arrange - corrupt the stored config blob directly
	db := helpers.NewTestDB(t)
	clock := fixtureClock()
	repo := persistence.NewGormDealRepository(db, clock)
	d := seedDeal(t, db, clock)
	require.NoError(t, db.Model(&persistence.DealModel{}).
		Where("id = ?", d.ID().String()).
		Update("config", `{"parameters":{}}`).Error)

	// Act
	found, err := repo.FindByID(context.Background(), d.ID())

	// Assert - the deal loads, the config does not
	require.NoError(t, err)
	assert.Nil(t, found.Config())
	assert.Equal(t, deal.StatusNegotiating, found.Status())
}

func TestGormDealRepository_ArchiveAndDeleteTimestampsSurvive(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := fixtureClock()
	repo := persistence.NewGormDealRepository(db, clock)
	d := seedDeal(t, db, clock)

	d.Archive()
	d.SoftDelete()
	require.NoError(t, repo.Save(context.Background(), d))

	found, err := repo.FindByID(context.Background(), d.ID())
	require.NoError(t, err)
	require.NotNil(t, found.ArchivedAt())
	require.NotNil(t, found.DeletedAt())
	assert.WithinDuration(t, clock.Now(), *found.ArchivedAt(), time.Second)
}
