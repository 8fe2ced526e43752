package negotiation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/negotiation"
)

func TestComputeSignals_ConcedingVendor(t *testing.T) {
	// Vendor moves 1300 -> 1200 -> 1100 while the buyer counters upward
	signals := negotiation.ComputeSignals(
		[]float64{1300, 1200, 1100},
		[]float64{900, 950, 1000},
		"happy to work with you",
	)

	assert.Positive(t, signals.ConcessionVelocity)
	assert.Positive(t, signals.Momentum)
	assert.False(t, signals.IsStalling)
	assert.False(t, signals.IsDiverging)
	assert.True(t, signals.IsConverging)
	assert.Equal(t, negotiation.SentimentPositive, signals.LatestSentiment)
	assert.Equal(t, 3, signals.Rounds)
}

func TestComputeSignals_StallingVendor(t *testing.T) {
	signals := negotiation.ComputeSignals(
		[]float64{1300, 1200, 1200, 1200},
		[]float64{900, 950, 1000, 1050},
		"this is our final offer",
	)

	assert.True(t, signals.IsStalling)
	assert.Equal(t, negotiation.SentimentNegative, signals.LatestSentiment)
}

func TestComputeSignals_DivergingVendor(t *testing.T) {
	signals := negotiation.ComputeSignals(
		[]float64{1200, 1300},
		[]float64{900, 950},
		"",
	)

	assert.True(t, signals.IsDiverging)
	assert.Negative(t, signals.Momentum)
}

func TestComputeSignals_SingleRoundIsNeutral(t *testing.T) {
	signals := negotiation.ComputeSignals([]float64{1200}, []float64{900}, "")

	assert.Zero(t, signals.Momentum)
	assert.Zero(t, signals.ConvergenceRate)
	assert.False(t, signals.IsStalling)
	assert.Equal(t, 1, signals.Rounds)
}

func TestComputeAdaptiveStrategy_HoldsFirmOnStall(t *testing.T) {
	strategy := negotiation.ComputeAdaptiveStrategy(
		negotiation.BehavioralSignals{IsStalling: true},
		testConfig(), 3)

	assert.Equal(t, deal.StrategyHoldFirm, strategy.Label)
	assert.Equal(t, 0.5, strategy.Aggressiveness)
	assert.False(t, strategy.ShouldExtendRounds)
}

func TestComputeAdaptiveStrategy_HoldsFirmOnNegativeSentiment(t *testing.T) {
	strategy := negotiation.ComputeAdaptiveStrategy(
		negotiation.BehavioralSignals{LatestSentiment: negotiation.SentimentNegative},
		testConfig(), 2)

	assert.Equal(t, deal.StrategyHoldFirm, strategy.Label)
}

func TestComputeAdaptiveStrategy_SlowConcedeOnDivergence(t *testing.T) {
	strategy := negotiation.ComputeAdaptiveStrategy(
		negotiation.BehavioralSignals{IsDiverging: true},
		testConfig(), 2)

	assert.Equal(t, deal.StrategySlowConcede, strategy.Label)
	assert.Equal(t, 0.6, strategy.Aggressiveness)
}

func TestComputeAdaptiveStrategy_FastConcedeUnderDeadlinePressure(t *testing.T) {
	// Round 5 of 6 with positive momentum
	strategy := negotiation.ComputeAdaptiveStrategy(
		negotiation.BehavioralSignals{Momentum: 0.4},
		testConfig(), 5)

	assert.Equal(t, deal.StrategyFastConcede, strategy.Label)
	assert.Equal(t, 1.4, strategy.Aggressiveness)
}

func TestComputeAdaptiveStrategy_ExtendsNearSoftCapWhenConverging(t *testing.T) {
	cfg := testConfig()
	cfg.DynamicRounds = &deal.DynamicRounds{SoftMax: 6, HardMax: 9, AutoExtendEnabled: true}

	strategy := negotiation.ComputeAdaptiveStrategy(
		negotiation.BehavioralSignals{IsConverging: true, ConvergenceRate: 0.2},
		cfg, 5)

	assert.Equal(t, deal.StrategyExtend, strategy.Label)
	assert.True(t, strategy.ShouldExtendRounds)
}

func TestComputeAdaptiveStrategy_NoExtensionWithoutOptIn(t *testing.T) {
	cfg := testConfig()
	cfg.DynamicRounds = &deal.DynamicRounds{SoftMax: 6, HardMax: 9, AutoExtendEnabled: false}

	strategy := negotiation.ComputeAdaptiveStrategy(
		negotiation.BehavioralSignals{IsConverging: true, ConvergenceRate: 0.2},
		cfg, 5)

	assert.False(t, strategy.ShouldExtendRounds)
}

func TestComputeAdaptiveStrategy_MatchesPaceByDefault(t *testing.T) {
	strategy := negotiation.ComputeAdaptiveStrategy(
		negotiation.BehavioralSignals{}, testConfig(), 2)

	assert.Equal(t, deal.StrategyMatchPace, strategy.Label)
	assert.Equal(t, 1.0, strategy.Aggressiveness)
}
