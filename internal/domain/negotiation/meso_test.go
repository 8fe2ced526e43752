package negotiation_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/negotiation"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

func TestShouldUseMeso(t *testing.T) {
	// Not before round 2, not past the soft cap, at most every other round
	assert.False(t, negotiation.ShouldUseMeso(1, 6, 0))
	assert.True(t, negotiation.ShouldUseMeso(2, 6, 0))
	assert.True(t, negotiation.ShouldUseMeso(2, 6, 1))
	assert.False(t, negotiation.ShouldUseMeso(3, 6, 2))
	assert.True(t, negotiation.ShouldUseMeso(4, 6, 2))
	assert.False(t, negotiation.ShouldUseMeso(7, 6, 0))
}

func TestMesoGenerator_InitialBundle(t *testing.T) {
	// Arrange - current utility 0.65, so the bundle probes at 0.70
	generator := negotiation.NewMesoGenerator()
	cfg := testConfig()
	current := &deal.Offer{TotalPrice: floatPtr(1000), PaymentTerms: "Net 60"}

	// Act
	meso := generator.Generate(cfg, current, 0.65, shared.NewID(), 2, nil, deal.NewNegotiationState())

	// Assert
	require.NotNil(t, meso)
	assert.Equal(t, deal.MesoTypeInitial, meso.Type)
	assert.InDelta(t, 0.70, meso.TargetUtility, 1e-9)
	assert.Equal(t, 0.03, meso.Variance)
	require.Len(t, meso.Options, 3)

	// Every option lands within the variance band of the target
	for _, opt := range meso.Options {
		assert.LessOrEqual(t, math.Abs(opt.Utility-meso.TargetUtility), meso.Variance,
			"option %s utility %.3f outside band", opt.ID, opt.Utility)
	}

	// The price-favoring option concedes price on buyer-friendly terms
	priceFavoring := meso.Options[0]
	assert.Equal(t, deal.MesoLabelPriceFavoring, priceFavoring.Label)
	assert.Equal(t, "Net 90", priceFavoring.Offer.PaymentTerms)
	require.NotNil(t, priceFavoring.Offer.TotalPrice)
	assert.InDelta(t, 1050.0, *priceFavoring.Offer.TotalPrice, 0.01)

	// The terms-favoring option clamps at the anchor and stays in band
	termsFavoring := meso.Options[2]
	assert.Equal(t, deal.MesoLabelTermsFavoring, termsFavoring.Label)
	assert.Equal(t, "Net 30", termsFavoring.Offer.PaymentTerms)
	assert.InDelta(t, 850.0, *termsFavoring.Offer.TotalPrice, 0.01)
	assert.InDelta(t, 0.68, termsFavoring.Utility, 1e-9)
}

func TestMesoGenerator_FinalBundleTightensVariance(t *testing.T) {
	generator := negotiation.NewMesoGenerator()
	cfg := testConfig()
	current := &deal.Offer{TotalPrice: floatPtr(950), PaymentTerms: "Net 90"}

	meso := generator.Generate(cfg, current, 0.80, shared.NewID(), 4, nil, deal.NewNegotiationState())

	require.NotNil(t, meso)
	assert.Equal(t, deal.MesoTypeFinal, meso.Type)
	assert.Equal(t, 0.02, meso.Variance)
	// Closing bundles stay at the current utility instead of probing above
	assert.InDelta(t, 0.80, meso.TargetUtility, 1e-9)
	assert.True(t, meso.IsFinal())
}

func TestMesoGenerator_DynamicBundleAfterPriorRound(t *testing.T) {
	generator := negotiation.NewMesoGenerator()
	cfg := testConfig()
	current := &deal.Offer{TotalPrice: floatPtr(1000), PaymentTerms: "Net 60"}

	prev := generator.Generate(cfg, current, 0.60, shared.NewID(), 2, nil, deal.NewNegotiationState())
	require.NotNil(t, prev)

	meso := generator.Generate(cfg, current, 0.62, shared.NewID(), 4, prev, deal.NewNegotiationState())

	require.NotNil(t, meso)
	assert.Equal(t, deal.MesoTypeDynamic, meso.Type)
}

func TestMesoGenerator_ExplorationWidensVariance(t *testing.T) {
	generator := negotiation.NewMesoGenerator()
	cfg := testConfig()
	state := deal.NewNegotiationState()
	state.InPreferenceExploration = true
	state.ExplorationRoundsRemaining = 2
	current := &deal.Offer{TotalPrice: floatPtr(1000), PaymentTerms: "Net 60"}

	meso := generator.Generate(cfg, current, 0.60, shared.NewID(), 2, nil, state)

	require.NotNil(t, meso)
	assert.Equal(t, 0.05, meso.Variance)
}

func TestMesoRound_OptionByID(t *testing.T) {
	generator := negotiation.NewMesoGenerator()
	cfg := testConfig()
	current := &deal.Offer{TotalPrice: floatPtr(1000), PaymentTerms: "Net 60"}

	meso := generator.Generate(cfg, current, 0.65, shared.NewID(), 2, nil, deal.NewNegotiationState())
	require.NotNil(t, meso)
	require.NotEmpty(t, meso.Options)

	found := meso.OptionByID(meso.Options[0].ID)
	require.NotNil(t, found)
	assert.Equal(t, meso.Options[0].Label, found.Label)

	assert.Nil(t, meso.OptionByID("missing"))
}

func TestDetectStall_TripleRepeatTriggersPrompt(t *testing.T) {
	prompt, stalled := negotiation.DetectStall(map[string][]float64{
		deal.FieldTotalPrice:   {1300, 1200, 1200, 1200},
		deal.FieldPaymentTerms: {0, 1, 2},
	})

	assert.True(t, stalled)
	assert.Contains(t, prompt, deal.FieldTotalPrice)
	assert.Contains(t, prompt, "best and final")
}

func TestDetectStall_MovementResetsDetection(t *testing.T) {
	_, stalled := negotiation.DetectStall(map[string][]float64{
		deal.FieldTotalPrice: {1200, 1200, 1150},
	})

	assert.False(t, stalled)
}

func TestDetectStall_ShortHistory(t *testing.T) {
	_, stalled := negotiation.DetectStall(map[string][]float64{
		deal.FieldTotalPrice: {1200, 1200},
	})

	assert.False(t, stalled)
}
