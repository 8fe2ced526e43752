package deal

import "github.com/yug-shah0106/accordo-engine/internal/domain/shared"

// BehaviorProfile tags a vendor's typical bargaining style
type BehaviorProfile string

const (
	BehaviorCooperative BehaviorProfile = "cooperative"
	BehaviorAggressive  BehaviorProfile = "aggressive"
	BehaviorAnchoring   BehaviorProfile = "anchoring"
	BehaviorUnknown     BehaviorProfile = "unknown"
)

// VendorProfile aggregates a vendor's historical behavior across deals.
// The config builder uses MeanFinalDiscount to shift the anchor when
// SampleSize is large enough.
type VendorProfile struct {
	VendorID          shared.ID       `json:"vendor_id"`
	DealCount         int             `json:"deal_count"`
	AcceptedCount     int             `json:"accepted_count"`
	MeanFinalDiscount float64         `json:"mean_final_discount"` // fraction of target conceded at close
	TypicalFinalTerms string          `json:"typical_final_terms"`
	Behavior          BehaviorProfile `json:"behavior"`
}

// AcceptRate returns accepted deals over total deals, or 0 when empty
func (p *VendorProfile) AcceptRate() float64 {
	if p.DealCount == 0 {
		return 0
	}
	return float64(p.AcceptedCount) / float64(p.DealCount)
}

// RecordOutcome folds one finished deal into the profile. finalDiscount
// is the fraction of the target price the buyer ended up above (negative
// when the close beat the target); it only contributes on acceptance.
func (p *VendorProfile) RecordOutcome(accepted bool, finalDiscount float64, finalTerms string) {
	p.DealCount++
	if !accepted {
		return
	}
	// Running mean over accepted deals only
	p.MeanFinalDiscount = (p.MeanFinalDiscount*float64(p.AcceptedCount) + finalDiscount) / float64(p.AcceptedCount+1)
	p.AcceptedCount++
	if finalTerms != "" {
		p.TypicalFinalTerms = finalTerms
	}
}
