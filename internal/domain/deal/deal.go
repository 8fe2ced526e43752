package deal

import (
	"fmt"
	"time"

	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// Mode selects how the engine is used for a deal
type Mode string

const (
	// ModeInsights computes decisions without sending responses
	ModeInsights Mode = "INSIGHTS"
	// ModeConversation runs the full two-phase message pipeline
	ModeConversation Mode = "CONVERSATION"
)

// Status is the deal lifecycle state. Transitions form a DAG from
// NEGOTIATING to the three terminal states, with a single resume edge
// ESCALATED -> NEGOTIATING.
type Status string

const (
	StatusNegotiating Status = "NEGOTIATING"
	StatusAccepted    Status = "ACCEPTED"
	StatusWalkedAway  Status = "WALKED_AWAY"
	StatusEscalated   Status = "ESCALATED"
)

// Deal is the negotiation session aggregate. References are immutable
// after creation; rounds only move forward; messages are owned by id.
type Deal struct {
	id       shared.ID
	title    string
	mode     Mode
	status   Status
	round    int
	priority Priority

	buyerID       shared.ID
	vendorID      shared.ID
	requisitionID shared.ID
	contractID    shared.ID

	config            *NegotiationConfig
	state             *NegotiationState
	latestVendorOffer *Offer
	latestCounter     *Offer
	latestUtility     *float64
	latestAction      Action
	degraded          bool

	createdAt     time.Time
	lastMessageAt *time.Time
	archivedAt    *time.Time
	deletedAt     *time.Time

	clock shared.Clock
}

// NewDeal creates a deal in NEGOTIATING status at round 0.
// The clock parameter is optional - if nil, defaults to RealClock.
func NewDeal(title string, mode Mode, priority Priority, buyerID, vendorID, requisitionID, contractID shared.ID, config *NegotiationConfig, clock shared.Clock) (*Deal, error) {
	if title == "" {
		return nil, shared.NewValidationError("title", "deal title cannot be empty")
	}
	if buyerID.IsZero() || vendorID.IsZero() {
		return nil, shared.NewValidationError("references", "buyer and vendor are required")
	}
	if config == nil {
		return nil, shared.NewValidationError("config", "negotiation config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Deal{
		id:            shared.NewID(),
		title:         title,
		mode:          mode,
		status:        StatusNegotiating,
		priority:      priority,
		buyerID:       buyerID,
		vendorID:      vendorID,
		requisitionID: requisitionID,
		contractID:    contractID,
		config:        config,
		state:         NewNegotiationState(),
		createdAt:     clock.Now(),
		clock:         clock,
	}, nil
}

// Getters

func (d *Deal) ID() shared.ID              { return d.id }
func (d *Deal) Title() string              { return d.title }
func (d *Deal) Mode() Mode                 { return d.mode }
func (d *Deal) Status() Status             { return d.status }
func (d *Deal) Round() int                 { return d.round }
func (d *Deal) Priority() Priority         { return d.priority }
func (d *Deal) BuyerID() shared.ID         { return d.buyerID }
func (d *Deal) VendorID() shared.ID        { return d.vendorID }
func (d *Deal) RequisitionID() shared.ID   { return d.requisitionID }
func (d *Deal) ContractID() shared.ID      { return d.contractID }
func (d *Deal) Config() *NegotiationConfig { return d.config }
func (d *Deal) State() *NegotiationState   { return d.state }
func (d *Deal) LatestVendorOffer() *Offer  { return d.latestVendorOffer }
func (d *Deal) LatestCounter() *Offer      { return d.latestCounter }
func (d *Deal) LatestUtility() *float64    { return d.latestUtility }
func (d *Deal) LatestAction() Action       { return d.latestAction }
func (d *Deal) Degraded() bool             { return d.degraded }
func (d *Deal) CreatedAt() time.Time       { return d.createdAt }
func (d *Deal) LastMessageAt() *time.Time  { return d.lastMessageAt }
func (d *Deal) ArchivedAt() *time.Time     { return d.archivedAt }
func (d *Deal) DeletedAt() *time.Time      { return d.deletedAt }

// IsNegotiating reports whether the deal accepts new vendor messages
func (d *Deal) IsNegotiating() bool {
	return d.status == StatusNegotiating
}

// IsTerminal reports whether the deal has reached a terminal status
func (d *Deal) IsTerminal() bool {
	return d.status == StatusAccepted || d.status == StatusWalkedAway || d.status == StatusEscalated
}

// RecordVendorOffer updates the latest accumulated vendor offer and the
// last-message timestamp. Called during Phase-1; the round is not
// advanced here because the round is still in progress.
func (d *Deal) RecordVendorOffer(offer *Offer) {
	d.latestVendorOffer = offer
	now := d.clock.Now()
	d.lastMessageAt = &now
}

// CompleteRound records the engine decision that concludes a round,
// advances the round counter and applies any status transition.
// Rounds are monotonically non-decreasing.
func (d *Deal) CompleteRound(round int, decision *Decision, state *NegotiationState) error {
	if d.status != StatusNegotiating {
		return shared.NewConflictError(
			fmt.Sprintf("deal %s is not negotiating", d.id), string(d.status))
	}
	if round < d.round {
		return shared.NewConflictError(
			fmt.Sprintf("round %d precedes current round %d", round, d.round), string(d.status))
	}
	d.round = round
	d.state = state
	d.latestAction = decision.Action
	u := decision.UtilityScore
	d.latestUtility = &u
	if decision.CounterOffer != nil {
		d.latestCounter = decision.CounterOffer
	}
	now := d.clock.Now()
	d.lastMessageAt = &now

	switch decision.Action {
	case ActionAccept:
		d.status = StatusAccepted
	case ActionWalkAway:
		d.status = StatusWalkedAway
	case ActionEscalate:
		d.status = StatusEscalated
	}
	return nil
}

// Resume is the single allowed exception to the terminal DAG: an
// escalated deal may return to negotiation via this explicit operation.
func (d *Deal) Resume() error {
	if d.status != StatusEscalated {
		return shared.NewConflictError(
			fmt.Sprintf("deal %s can only be resumed from ESCALATED", d.id), string(d.status))
	}
	d.status = StatusNegotiating
	return nil
}

// ReplaceState swaps in a recomputed negotiation state outside the
// round-completion path (e.g. after a MESO selection)
func (d *Deal) ReplaceState(state *NegotiationState) {
	if state != nil {
		d.state = state
	}
}

// MarkDegraded flags the deal after a permanent dependency failure
// (e.g. its persisted config had to be rebuilt from the requisition)
func (d *Deal) MarkDegraded() {
	d.degraded = true
}

// ReplaceConfig swaps in a rebuilt config after validation
func (d *Deal) ReplaceConfig(cfg *NegotiationConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.config = cfg
	return nil
}

// Archive sets the soft archive flag
func (d *Deal) Archive() {
	now := d.clock.Now()
	d.archivedAt = &now
}

// SoftDelete sets the soft delete flag
func (d *Deal) SoftDelete() {
	now := d.clock.Now()
	d.deletedAt = &now
}

// RecoverDeal reconstructs a deal from persisted state. This should
// only be used by repository adapters.
func RecoverDeal(
	id shared.ID,
	title string,
	mode Mode,
	status Status,
	round int,
	priority Priority,
	buyerID, vendorID, requisitionID, contractID shared.ID,
	config *NegotiationConfig,
	state *NegotiationState,
	latestVendorOffer, latestCounter *Offer,
	latestUtility *float64,
	latestAction Action,
	degraded bool,
	createdAt time.Time,
	lastMessageAt, archivedAt, deletedAt *time.Time,
	clock shared.Clock,
) *Deal {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if state == nil {
		state = NewNegotiationState()
	}
	return &Deal{
		id:                id,
		title:             title,
		mode:              mode,
		status:            status,
		round:             round,
		priority:          priority,
		buyerID:           buyerID,
		vendorID:          vendorID,
		requisitionID:     requisitionID,
		contractID:        contractID,
		config:            config,
		state:             state,
		latestVendorOffer: latestVendorOffer,
		latestCounter:     latestCounter,
		latestUtility:     latestUtility,
		latestAction:      latestAction,
		degraded:          degraded,
		createdAt:         createdAt,
		lastMessageAt:     lastMessageAt,
		archivedAt:        archivedAt,
		deletedAt:         deletedAt,
		clock:             clock,
	}
}
