package deal

import (
	"context"

	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// DealRepository defines deal persistence operations
type DealRepository interface {
	// FindByID retrieves a deal by id; returns NotFoundError if absent
	FindByID(ctx context.Context, id shared.ID) (*Deal, error)

	// Save persists the full deal row (upsert)
	Save(ctx context.Context, d *Deal) error
}

// MessageRepository defines message persistence operations.
// Messages are append-only and unique on (deal_id, round, role) as well
// as on id, which makes saving the same message twice a no-op.
type MessageRepository interface {
	// Add persists a message; idempotent on message id
	Add(ctx context.Context, m *Message) error

	// ListByDeal returns all messages for a deal ordered by (round, role)
	// with VENDOR before ACCORDO within a round
	ListByDeal(ctx context.Context, dealID shared.ID) ([]*Message, error)

	// FindLast returns the most recent message for a role, optionally
	// restricted to messages that carry an extracted offer.
	// Returns nil (no error) when no such message exists.
	FindLast(ctx context.Context, dealID shared.ID, role Role, withOffer bool) (*Message, error)
}

// MesoRoundRepository defines MESO round persistence operations
type MesoRoundRepository interface {
	Add(ctx context.Context, round *MesoRound) error
	ListByDeal(ctx context.Context, dealID shared.ID) ([]*MesoRound, error)

	// RecordSelection marks which option the vendor picked
	RecordSelection(ctx context.Context, mesoID shared.ID, optionID string) error
}

// RequisitionRepository defines requisition persistence operations
type RequisitionRepository interface {
	// FindByID retrieves a requisition; returns NotFoundError if absent
	FindByID(ctx context.Context, id shared.ID) (*Requisition, error)
	Save(ctx context.Context, r *Requisition) error
}

// VendorProfileRepository defines vendor profile persistence operations
type VendorProfileRepository interface {
	// FindByVendor returns nil (no error) when the vendor has no profile yet
	FindByVendor(ctx context.Context, vendorID shared.ID) (*VendorProfile, error)
	Upsert(ctx context.Context, profile *VendorProfile) error
}

// Store is the durable persistence capability behind the pipeline.
// Transaction runs fn against a store view whose writes commit or roll
// back atomically; per-round writes always go through it.
type Store interface {
	Deals() DealRepository
	Messages() MessageRepository
	MesoRounds() MesoRoundRepository
	Requisitions() RequisitionRepository
	VendorProfiles() VendorProfileRepository

	Transaction(ctx context.Context, fn func(tx Store) error) error
}
