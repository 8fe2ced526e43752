package deal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

func TestNegotiationConfig_Validate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestNegotiationConfig_ValidateRejectsBadWeights(t *testing.T) {
	cfg := validConfig()
	cfg.Price.Weight = 0.7 // sums to 1.1

	err := cfg.Validate()

	assert.True(t, shared.IsValidation(err))
	assert.Contains(t, err.Error(), "weights must sum to 1.0")
}

func TestNegotiationConfig_ValidateRejectsBadThresholds(t *testing.T) {
	cfg := validConfig()
	cfg.WalkawayThreshold = 0.60 // above escalate

	assert.True(t, shared.IsValidation(cfg.Validate()))

	cfg = validConfig()
	cfg.AcceptThreshold = 1.2
	assert.True(t, shared.IsValidation(cfg.Validate()))
}

func TestNegotiationConfig_ValidateRejectsBadPriceBand(t *testing.T) {
	cfg := validConfig()
	cfg.Price.Anchor = 1300 // above target

	assert.True(t, shared.IsValidation(cfg.Validate()))

	cfg = validConfig()
	cfg.Price.ConcessionStep = 0
	assert.True(t, shared.IsValidation(cfg.Validate()))
}

func TestNegotiationConfig_ValidateRejectsTermsWithoutUtility(t *testing.T) {
	cfg := validConfig()
	cfg.Terms.Options = append(cfg.Terms.Options, "Net 120")

	err := cfg.Validate()

	assert.True(t, shared.IsValidation(err))
	assert.Contains(t, err.Error(), "Net 120")
}

func TestConfig_EncodeDecodeRoundTrip(t *testing.T) {
	// Arrange
	cfg := validConfig()
	cfg.DynamicRounds = &deal.DynamicRounds{SoftMax: 6, HardMax: 9, AutoExtendEnabled: true}
	cfg.Adaptive = &deal.AdaptiveFeatures{Enabled: true}

	// Act
	raw, err := deal.EncodeConfig(cfg)
	require.NoError(t, err)
	decoded, err := deal.DecodeConfig(raw)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, cfg.Price, decoded.Price)
	assert.Equal(t, cfg.Terms, decoded.Terms)
	assert.Equal(t, cfg.AcceptThreshold, decoded.AcceptThreshold)
	assert.Equal(t, cfg.DynamicRounds, decoded.DynamicRounds)
	assert.True(t, decoded.AdaptiveEnabled())
}

func TestDecodeConfig_RejectsLegacyUnitPrice(t *testing.T) {
	raw := []byte(`{
		"parameters": {
			"unit_price": {"weight": 1.0, "anchor": 10, "target": 12, "max_acceptable": 15},
			"total_price": {"weight": 0.6, "anchor": 850, "target": 1000, "max_acceptable": 1250, "concession_step": 50}
		},
		"accept_threshold": 0.7,
		"escalate_threshold": 0.5,
		"walkaway_threshold": 0.3,
		"max_rounds": 6
	}`)

	_, err := deal.DecodeConfig(raw)

	assert.True(t, shared.IsValidation(err))
	assert.Contains(t, err.Error(), "unit_price")
}

func TestDecodeConfig_MalformedBlobIsPermanent(t *testing.T) {
	_, err := deal.DecodeConfig([]byte(`{not json`))

	assert.Error(t, err)
	assert.False(t, shared.IsTransient(err))
}

func TestDecodeConfig_MissingTotalPrice(t *testing.T) {
	_, err := deal.DecodeConfig([]byte(`{"parameters": {}, "max_rounds": 6}`))

	assert.Error(t, err)
}

func TestConfig_RoundCaps(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 6, cfg.SoftMaxRounds())
	assert.Equal(t, 6, cfg.HardMaxRounds())

	cfg.DynamicRounds = &deal.DynamicRounds{SoftMax: 6, HardMax: 9}
	assert.Equal(t, 6, cfg.SoftMaxRounds())
	assert.Equal(t, 9, cfg.HardMaxRounds())
}
