package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yug-shah0106/accordo-engine/internal/adapters/persistence"
	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/commands"
	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/services"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
	"github.com/yug-shah0106/accordo-engine/test/helpers"
)

// newPipeline wires both phases over one store with the template
// generator standing in for the LLM
func newPipeline(t *testing.T) (*commands.ProcessVendorMessageHandler, *persistence.GormStore, *deal.Deal) {
	t.Helper()
	db := helpers.NewTestDB(t)
	clock := testClock()
	store := persistence.NewGormStore(db, clock)
	locks := services.NewDealLockTable()
	generator := services.NewResponseGenerator(nil, 0)

	phase1 := commands.NewSaveVendorMessageHandler(store, locks, nil, clock)
	phase2 := commands.NewGeneratePMResponseHandler(store, locks, generator, nil, nil, nil, nil, clock)
	pipeline := commands.NewProcessVendorMessageHandler(locks, phase1, phase2)

	return pipeline, store, createDealForTest(t, store, clock)
}

func TestProcessVendorMessage_CompletesARound(t *testing.T) {
	// Arrange
	pipeline, store, d := newPipeline(t)

	// Act
	resp, err := pipeline.Handle(context.Background(), &commands.ProcessVendorMessageCommand{
		DealID:  d.ID(),
		Content: "We can supply the full order for $1,100 on Net 60 terms.",
	})

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.ProcessVendorMessageResponse)
	require.NotNil(t, result.VendorMessage)
	require.NotNil(t, result.PMMessage)
	assert.Equal(t, 1, result.VendorMessage.Round)
	assert.Equal(t, 1, result.PMMessage.Round)
	assert.Equal(t, deal.ActionCounter, result.Decision.Action)
	assert.NotEmpty(t, result.PMMessage.Content)
	assert.Equal(t, 1, result.Deal.Round())

	// Both messages and the deal advance landed in the store
	messages, err := store.Messages().ListByDeal(context.Background(), d.ID())
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, deal.RoleVendor, messages[0].Role)
	assert.Equal(t, deal.RoleAccordo, messages[1].Role)

	found, err := store.Deals().FindByID(context.Background(), d.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, found.Round())
	require.NotNil(t, found.LatestUtility())
}

func TestProcessVendorMessage_GarbledTextAsksForClarification(t *testing.T) {
	pipeline, _, d := newPipeline(t)

	resp, err := pipeline.Handle(context.Background(), &commands.ProcessVendorMessageCommand{
		DealID:  d.ID(),
		Content: "Thanks for the call yesterday, talk soon!",
	})

	require.NoError(t, err)
	result := resp.(*commands.ProcessVendorMessageResponse)
	assert.Equal(t, deal.ActionAskClarify, result.Decision.Action)
	assert.Equal(t, deal.StatusNegotiating, result.Deal.Status())
	require.NotNil(t, result.VendorMessage.Accumulated)
	assert.False(t, result.VendorMessage.Accumulated.IsComplete)
}

func TestProcessVendorMessage_AccumulatesAcrossRounds(t *testing.T) {
	// Arrange - terms only, then price only
	pipeline, _, d := newPipeline(t)
	ctx := context.Background()

	_, err := pipeline.Handle(ctx, &commands.ProcessVendorMessageCommand{
		DealID:  d.ID(),
		Content: "We can do Net 60.",
	})
	require.NoError(t, err)

	// Act
	resp, err := pipeline.Handle(ctx, &commands.ProcessVendorMessageCommand{
		DealID:  d.ID(),
		Content: "We can come down to $950.",
	})

	// Assert - the merged offer is evaluated normally
	require.NoError(t, err)
	result := resp.(*commands.ProcessVendorMessageResponse)
	assert.Equal(t, deal.ActionCounter, result.Decision.Action)
	require.NotNil(t, result.VendorMessage.Accumulated)
	assert.True(t, result.VendorMessage.Accumulated.IsComplete)
	require.NotNil(t, result.VendorMessage.Accumulated.Offer.TotalPrice)
	assert.Equal(t, 950.0, *result.VendorMessage.Accumulated.Offer.TotalPrice)
	assert.Equal(t, "Net 60", result.VendorMessage.Accumulated.Offer.PaymentTerms)
}

func TestProcessVendorMessage_RejectedOnTerminalDeal(t *testing.T) {
	pipeline, store, d := newPipeline(t)
	require.NoError(t, d.CompleteRound(1, &deal.Decision{Action: deal.ActionAccept, UtilityScore: 0.9}, deal.NewNegotiationState()))
	require.NoError(t, store.Deals().Save(context.Background(), d))

	_, err := pipeline.Handle(context.Background(), &commands.ProcessVendorMessageCommand{
		DealID:  d.ID(),
		Content: "One more thing about the price.",
	})

	assert.True(t, shared.IsConflict(err))
}

func TestGeneratePMResponse_RequiresAPendingVendorMessage(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := testClock()
	store := persistence.NewGormStore(db, clock)
	locks := services.NewDealLockTable()
	d := createDealForTest(t, store, clock)

	handler := commands.NewGeneratePMResponseHandler(store, locks, services.NewResponseGenerator(nil, 0), nil, nil, nil, nil, clock)
	_, err := handler.Handle(context.Background(), &commands.GeneratePMResponseCommand{DealID: d.ID()})

	assert.True(t, shared.IsNotFound(err))
}
