package deal

import (
	"time"

	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// MaxMessageBytes bounds vendor text input (UTF-8)
const MaxMessageBytes = 8 * 1024

// Role identifies the author of a message within a deal
type Role string

const (
	RoleVendor Role = "VENDOR"
	// RoleAccordo is the buyer-side PM engine
	RoleAccordo Role = "ACCORDO"
	RoleSystem  Role = "SYSTEM"
)

// Message is an append-only ordered event in a deal. Within a deal,
// vendor and PM messages alternate; each completed round has exactly one
// VENDOR message followed by one ACCORDO message with the same round.
type Message struct {
	ID          shared.ID
	DealID      shared.ID
	Role        Role
	Round       int
	Content     string
	Offer       *Offer            // extracted from vendor text, if any
	Accumulated *AccumulatedOffer // running accumulation at this point
	Decision    *Decision         // engine decision, on ACCORDO messages
	CreatedAt   time.Time
}

// NewVendorMessage creates a vendor message for an in-progress round
func NewVendorMessage(dealID shared.ID, round int, content string, offer *Offer, acc *AccumulatedOffer, now time.Time) (*Message, error) {
	if content == "" {
		return nil, shared.NewValidationError("content", "message content cannot be empty")
	}
	if len(content) > MaxMessageBytes {
		return nil, shared.NewValidationError("content", "message content exceeds 8 KB limit")
	}
	return &Message{
		ID:          shared.NewID(),
		DealID:      dealID,
		Role:        RoleVendor,
		Round:       round,
		Content:     content,
		Offer:       offer,
		Accumulated: acc,
		CreatedAt:   now,
	}, nil
}

// NewPMMessage creates the buyer-side response that concludes a round
func NewPMMessage(dealID shared.ID, round int, content string, decision *Decision, now time.Time) (*Message, error) {
	if content == "" {
		return nil, shared.NewValidationError("content", "message content cannot be empty")
	}
	if decision == nil {
		return nil, shared.NewValidationError("decision", "PM message requires a decision")
	}
	return &Message{
		ID:        shared.NewID(),
		DealID:    dealID,
		Role:      RoleAccordo,
		Round:     round,
		Content:   content,
		Decision:  decision,
		CreatedAt: now,
	}, nil
}
