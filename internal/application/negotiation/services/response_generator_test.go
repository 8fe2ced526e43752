package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yug-shah0106/accordo-engine/internal/application/common"
	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/services"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/negotiation"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

type stubLLM struct {
	text string
	err  error
}

func (s *stubLLM) Generate(ctx context.Context, systemPrompt string, history []common.ChatMessage, opts common.GenerateOptions) (string, error) {
	return s.text, s.err
}

func stanceConfig() *deal.NegotiationConfig {
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

func stanceDeal(t *testing.T) *deal.Deal {
	t.Helper()
	d, err := deal.NewDeal("Laptop fleet renewal", deal.ModeConversation, deal.PriorityMedium,
		shared.NewID(), shared.NewID(), shared.NewID(), shared.ID{}, stanceConfig(), nil)
	require.NoError(t, err)
	return d
}

func TestResponseGenerator_UsesLLMWhenAvailable(t *testing.T) {
	generator := services.NewResponseGenerator(&stubLLM{text: "Happy to proceed at $900 on Net 90."}, time.Second)
	price := 900.0

	text, source := generator.Generate(context.Background(), stanceDeal(t), &deal.Decision{
		Action:       deal.ActionCounter,
		CounterOffer: &deal.Offer{TotalPrice: &price, PaymentTerms: "Net 90"},
	}, nil)

	assert.Equal(t, services.SuggestionSourceLLM, source)
	assert.Equal(t, "Happy to proceed at $900 on Net 90.", text)
}

func TestResponseGenerator_FallsBackOnError(t *testing.T) {
	generator := services.NewResponseGenerator(&stubLLM{err: errors.New("upstream 503")}, time.Second)
	price := 900.0

	text, source := generator.Generate(context.Background(), stanceDeal(t), &deal.Decision{
		Action:       deal.ActionCounter,
		CounterOffer: &deal.Offer{TotalPrice: &price, PaymentTerms: "Net 90"},
	}, nil)

	assert.Equal(t, services.SuggestionSourceFallback, source)
	assert.Contains(t, text, "$900.00")
}

func TestResponseGenerator_FallsBackOnEmptyResponse(t *testing.T) {
	generator := services.NewResponseGenerator(&stubLLM{text: "   "}, time.Second)

	_, source := generator.Generate(context.Background(), stanceDeal(t), &deal.Decision{
		Action: deal.ActionEscalate,
	}, nil)

	assert.Equal(t, services.SuggestionSourceFallback, source)
}

func TestResponseGenerator_NilClientUsesTemplate(t *testing.T) {
	generator := services.NewResponseGenerator(nil, 0)

	text, source := generator.Generate(context.Background(), stanceDeal(t), &deal.Decision{
		Action: deal.ActionWalkAway,
	}, nil)

	assert.Equal(t, services.SuggestionSourceFallback, source)
	assert.Contains(t, text, "unable to proceed")
	assert.Contains(t, text, "Laptop fleet renewal")
}

func TestResponseGenerator_TemplateCoversEveryAction(t *testing.T) {
	generator := services.NewResponseGenerator(nil, 0)
	d := stanceDeal(t)
	price := 900.0

	cases := map[deal.Action]string{
		deal.ActionAccept:     "We accept",
		deal.ActionCounter:    "not quite there",
		deal.ActionEscalate:   "review this internally",
		deal.ActionWalkAway:   "unable to proceed",
		deal.ActionAskClarify: "we still need",
	}
	for action, want := range cases {
		text := generator.Template(d, &deal.Decision{
			Action:       action,
			CounterOffer: &deal.Offer{TotalPrice: &price},
			Explainability: deal.Explainability{
				Reason: "offer is missing required fields: total_price",
			},
		})
		assert.Contains(t, text, want, "action %s", action)
	}
}

func TestResponseGenerator_TemplateListsMesoOptions(t *testing.T) {
	generator := services.NewResponseGenerator(nil, 0)
	price1, price2 := 1050.0, 943.33

	text := generator.Template(stanceDeal(t), &deal.Decision{
		Action: deal.ActionCounter,
		Explainability: deal.Explainability{
			Meso: &deal.MesoExplain{
				Options: []deal.MesoOption{
					{ID: "m1-opt-1", Offer: deal.Offer{TotalPrice: &price1, PaymentTerms: "Net 90"}},
					{ID: "m1-opt-2", Offer: deal.Offer{TotalPrice: &price2, PaymentTerms: "Net 60"}},
				},
				StallPrompt: "could you share your best and final position?",
			},
		},
	})

	assert.Contains(t, text, "Option m1-opt-1")
	assert.Contains(t, text, "$1050.00, Net 90")
	assert.Contains(t, text, "best and final position")
}

func TestSuggestionWarmer_WarmsAndCancels(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	cache := services.NewSuggestionCache(time.Hour, 10, clock)
	generator := services.NewResponseGenerator(nil, 0)
	warmer := services.NewSuggestionWarmer(cache, negotiation.NewEngine(), generator)
	d := stanceDeal(t)
	price := 1200.0
	acc := &deal.AccumulatedOffer{
		Offer:      deal.Offer{TotalPrice: &price, PaymentTerms: "Net 90"},
		IsComplete: true,
	}

	// Act
	warmer.Warm(context.Background(), d, 1, acc)

	// Assert - the precompute lands asynchronously
	require.Eventually(t, func() bool {
		_, ok := cache.Get(d.ID(), 1)
		return ok
	}, time.Second, 5*time.Millisecond)

	suggestions, _ := cache.Get(d.ID(), 1)
	require.Len(t, suggestions, 1)
	assert.Equal(t, services.SuggestionSourceFallback, suggestions[0].Source)
	assert.NotEmpty(t, suggestions[0].Text)

	// Cancel invalidates whatever was cached
	warmer.Cancel(d.ID())
	_, ok := cache.Get(d.ID(), 1)
	assert.False(t, ok)
}
