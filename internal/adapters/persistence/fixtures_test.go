package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yug-shah0106/accordo-engine/internal/adapters/persistence"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

func fixtureConfig() *deal.NegotiationConfig {
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

func fixtureClock() *shared.MockClock {
	return shared.NewMockClock(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
}

// seedDeal creates and persists a negotiating deal
func seedDeal(t *testing.T, db *gorm.DB, clock shared.Clock) *deal.Deal {
	t.Helper()
	d, err := deal.NewDeal("Server racks Q3", deal.ModeConversation, deal.PriorityMedium,
		shared.NewID(), shared.NewID(), shared.NewID(), shared.ID{}, fixtureConfig(), clock)
	require.NoError(t, err)

	repo := persistence.NewGormDealRepository(db, clock)
	require.NoError(t, repo.Save(context.Background(), d))
	return d
}

func fixturePrice(v float64) *float64 { return &v }
