package persistence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yug-shah0106/accordo-engine/internal/adapters/persistence"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
	"github.com/yug-shah0106/accordo-engine/test/helpers"
)

func TestGormStore_TransactionCommitsRoundWritesTogether(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := fixtureClock()
	store := persistence.NewGormStore(db, clock)
	d := seedDeal(t, db, clock)
	ctx := context.Background()

	// Act - PM message and deal advance commit in one transaction
	err := store.Transaction(ctx, func(tx deal.Store) error {
		counter := 950.0
		decision := &deal.Decision{
			Action:       deal.ActionCounter,
			UtilityScore: 0.52,
			CounterOffer: &deal.Offer{TotalPrice: &counter, PaymentTerms: "Net 90"},
		}
		pm, err := deal.NewPMMessage(d.ID(), 1, "We can move to $950 on Net 90.", decision, clock.Now())
		if err != nil {
			return err
		}
		if err := tx.Messages().Add(ctx, pm); err != nil {
			return err
		}
		if err := d.CompleteRound(1, decision, deal.NewNegotiationState()); err != nil {
			return err
		}
		return tx.Deals().Save(ctx, d)
	})

	// Assert
	require.NoError(t, err)
	found, err := store.Deals().FindByID(ctx, d.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, found.Round())
	messages, err := store.Messages().ListByDeal(ctx, d.ID())
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestGormStore_TransactionRollsBackOnError(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := fixtureClock()
	store := persistence.NewGormStore(db, clock)
	d := seedDeal(t, db, clock)
	ctx := context.Background()

	// Act - the message write lands, then the callback fails
	err := store.Transaction(ctx, func(tx deal.Store) error {
		vendor, err := deal.NewVendorMessage(d.ID(), 1, "Our price is $1,100.", nil, nil, clock.Now())
		if err != nil {
			return err
		}
		if err := tx.Messages().Add(ctx, vendor); err != nil {
			return err
		}
		return errors.New("decision engine unavailable")
	})

	// Assert - nothing from the callback survived
	require.Error(t, err)
	messages, listErr := store.Messages().ListByDeal(ctx, d.ID())
	require.NoError(t, listErr)
	assert.Empty(t, messages)
}

func TestGormStore_RepositoriesShareOneConnection(t *testing.T) {
	db := helpers.NewTestDB(t)
	store := persistence.NewGormStore(db, nil)
	ctx := context.Background()

	req := &deal.Requisition{
		ID:       shared.NewID(),
		Currency: deal.CurrencyEUR,
		Products: []deal.RequisitionProduct{{Name: "Switch", Quantity: 1, UnitTargetPrice: 400}},
	}
	require.NoError(t, store.Requisitions().Save(ctx, req))

	found, err := store.Requisitions().FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, deal.CurrencyEUR, found.Currency)
}
