package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// GormStore implements deal.Store over a single GORM connection.
// Transaction hands callbacks a store view bound to the tx connection so
// per-round writes commit or roll back together.
type GormStore struct {
	db    *gorm.DB
	clock shared.Clock

	deals          *GormDealRepository
	messages       *GormMessageRepository
	mesoRounds     *GormMesoRoundRepository
	requisitions   *GormRequisitionRepository
	vendorProfiles *GormVendorProfileRepository
}

// NewGormStore creates a store over the connection
func NewGormStore(db *gorm.DB, clock shared.Clock) *GormStore {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormStore{
		db:             db,
		clock:          clock,
		deals:          NewGormDealRepository(db, clock),
		messages:       NewGormMessageRepository(db),
		mesoRounds:     NewGormMesoRoundRepository(db),
		requisitions:   NewGormRequisitionRepository(db),
		vendorProfiles: NewGormVendorProfileRepository(db),
	}
}

func (s *GormStore) Deals() deal.DealRepository                   { return s.deals }
func (s *GormStore) Messages() deal.MessageRepository             { return s.messages }
func (s *GormStore) MesoRounds() deal.MesoRoundRepository         { return s.mesoRounds }
func (s *GormStore) Requisitions() deal.RequisitionRepository     { return s.requisitions }
func (s *GormStore) VendorProfiles() deal.VendorProfileRepository { return s.vendorProfiles }

// Transaction runs fn against a transactional store view
func (s *GormStore) Transaction(ctx context.Context, fn func(tx deal.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(txDB *gorm.DB) error {
		return fn(NewGormStore(txDB, s.clock))
	})
}
