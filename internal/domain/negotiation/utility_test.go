package negotiation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/negotiation"
)

func TestEvaluateUtility_PiecewiseLinearPrice(t *testing.T) {
	cfg := testConfig()

	// At $960: (1250-960)/(1250-850) = 0.725
	b := negotiation.EvaluateUtility(&deal.Offer{TotalPrice: floatPtr(960)}, cfg)
	assert.InDelta(t, 0.725, b.Price, 1e-9)
	assert.InDelta(t, 0.6*0.725, b.Total, 1e-9)

	// At or below the anchor the component saturates at 1
	b = negotiation.EvaluateUtility(&deal.Offer{TotalPrice: floatPtr(850)}, cfg)
	assert.Equal(t, 1.0, b.Price)
	b = negotiation.EvaluateUtility(&deal.Offer{TotalPrice: floatPtr(500)}, cfg)
	assert.Equal(t, 1.0, b.Price)

	// At the reservation price it is exactly 0, never negative
	b = negotiation.EvaluateUtility(&deal.Offer{TotalPrice: floatPtr(1250)}, cfg)
	assert.Equal(t, 0.0, b.Price)
	b = negotiation.EvaluateUtility(&deal.Offer{TotalPrice: floatPtr(2000)}, cfg)
	assert.Equal(t, 0.0, b.Price)
}

func TestEvaluateUtility_TermsLookup(t *testing.T) {
	cfg := testConfig()

	b := negotiation.EvaluateUtility(&deal.Offer{
		TotalPrice:   floatPtr(960),
		PaymentTerms: "Net 60",
	}, cfg)

	assert.InDelta(t, 0.6, b.Terms, 1e-9)
	assert.InDelta(t, 0.6*0.725+0.4*0.6, b.Total, 1e-9)
}

func TestEvaluateUtility_UnknownTermsScoreZero(t *testing.T) {
	cfg := testConfig()

	b := negotiation.EvaluateUtility(&deal.Offer{
		TotalPrice:   floatPtr(960),
		PaymentTerms: "Net 45",
	}, cfg)

	assert.Equal(t, 0.0, b.Terms)
}

func TestEvaluateUtility_MissingAttributeContributesZero(t *testing.T) {
	cfg := testConfig()

	b := negotiation.EvaluateUtility(&deal.Offer{PaymentTerms: "Net 90"}, cfg)

	assert.Equal(t, 0.0, b.Price)
	assert.InDelta(t, 0.4, b.Total, 1e-9)
}

func TestEvaluateUtility_DeliveryWindow(t *testing.T) {
	// Arrange - delivery carved out at weight 0.2, price and terms rescaled
	cfg := testConfig()
	cfg.Price.Weight = 0.48
	cfg.Terms.Weight = 0.32
	order := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	cfg.Delivery = &deal.DeliveryParameter{
		Weight:        0.2,
		OrderDate:     order,
		PreferredDate: order.AddDate(0, 0, 14),
		RequiredDate:  order.AddDate(0, 0, 28),
		MaxLateDays:   14,
	}

	offer := &deal.Offer{TotalPrice: floatPtr(850), PaymentTerms: "Net 90"}

	// On the preferred date: full delivery utility
	early := cfg.Delivery.PreferredDate
	offer.DeliveryDate = &early
	b := negotiation.EvaluateUtility(offer, cfg)
	require.NotNil(t, b.Delivery)
	assert.Equal(t, 1.0, *b.Delivery)
	assert.InDelta(t, 1.0, b.Total, 1e-9)

	// Past required + max late days: zero
	late := cfg.Delivery.RequiredDate.AddDate(0, 0, 14)
	offer.DeliveryDate = &late
	b = negotiation.EvaluateUtility(offer, cfg)
	require.NotNil(t, b.Delivery)
	assert.Equal(t, 0.0, *b.Delivery)

	// Halfway between preferred and the hard deadline: 0.5
	mid := cfg.Delivery.PreferredDate.AddDate(0, 0, 14)
	offer.DeliveryDate = &mid
	b = negotiation.EvaluateUtility(offer, cfg)
	require.NotNil(t, b.Delivery)
	assert.InDelta(t, 0.5, *b.Delivery, 1e-9)
}

func TestEvaluateUtility_RelativeDeliveryProjectedFromOrderDate(t *testing.T) {
	cfg := testConfig()
	cfg.Price.Weight = 0.48
	cfg.Terms.Weight = 0.32
	order := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	cfg.Delivery = &deal.DeliveryParameter{
		Weight:        0.2,
		OrderDate:     order,
		PreferredDate: order.AddDate(0, 0, 14),
		RequiredDate:  order.AddDate(0, 0, 28),
		MaxLateDays:   14,
	}

	// "in 10 days" lands before the preferred date
	b := negotiation.EvaluateUtility(&deal.Offer{
		TotalPrice:   floatPtr(850),
		PaymentTerms: "Net 90",
		DeliveryDays: intPtr(10),
	}, cfg)

	require.NotNil(t, b.Delivery)
	assert.Equal(t, 1.0, *b.Delivery)
}
