package negotiation_test

import (
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
)

// testConfig is the reference stance used across the engine tests:
// target 1000, anchor 850, reservation 1250, Net 30/60/90 at
// 0.2/0.6/1.0, weights 0.6/0.4, thresholds 0.70/0.50/0.30, 6 rounds.
func testConfig() *deal.NegotiationConfig {
	return &deal.NegotiationConfig{
		Price: deal.PriceParameter{
			Weight:         0.6,
			Anchor:         850,
			Target:         1000,
			MaxAcceptable:  1250,
			ConcessionStep: 50,
		},
		Terms: deal.TermsParameter{
			Weight:  0.4,
			Options: []string{"Net 30", "Net 60", "Net 90"},
			Utilities: map[string]float64{
				"Net 30": 0.2,
				"Net 60": 0.6,
				"Net 90": 1.0,
			},
		},
		AcceptThreshold:   0.70,
		EscalateThreshold: 0.50,
		WalkawayThreshold: 0.30,
		MaxRounds:         6,
		Priority:          deal.PriorityMedium,
	}
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func completeOffer(price float64, terms string) *deal.AccumulatedOffer {
	return &deal.AccumulatedOffer{
		Offer: deal.Offer{
			TotalPrice:   floatPtr(price),
			PaymentTerms: terms,
		},
		IsComplete:     true,
		ProvidedFields: []string{deal.FieldPaymentTerms, deal.FieldTotalPrice},
	}
}
