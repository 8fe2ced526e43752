package deal

// Emphasis is the parameter the vendor appears to care about most,
// inferred from concession magnitudes and language cues
type Emphasis string

const (
	EmphasisPrice    Emphasis = "price"
	EmphasisTerms    Emphasis = "terms"
	EmphasisDelivery Emphasis = "delivery"
	EmphasisBalanced Emphasis = "balanced"
)

// MesoSelection records which MESO option the vendor picked in a round
type MesoSelection struct {
	Round    int      `json:"round"`
	Type     MesoType `json:"type"`
	OptionID string   `json:"option_id"`
	Label    MesoLabel `json:"label"`
}

// NegotiationState is the per-deal engine memory. It is rewritten in
// full on every Phase-2 completion; messages are referenced by id only.
type NegotiationState struct {
	PriceConcessions []float64 `json:"price_concessions"`
	TermsConcessions []float64 `json:"terms_concessions"`

	VendorEmphasis     Emphasis `json:"vendor_emphasis"`
	EmphasisConfidence float64  `json:"emphasis_confidence"`

	MesoSelections                []MesoSelection `json:"meso_selections"`
	ConsecutiveBalancedSelections int             `json:"consecutive_balanced_selections"`

	LastPMCounter  *Offer    `json:"last_pm_counter,omitempty"`
	UtilityHistory []float64 `json:"utility_history"`

	// ParameterHistories holds the raw vendor value per parameter per
	// round, used for stall detection
	ParameterHistories map[string][]float64 `json:"parameter_histories"`

	InPreferenceExploration    bool `json:"in_preference_exploration"`
	ExplorationRoundsRemaining int  `json:"exploration_rounds_remaining"`
}

// NewNegotiationState returns an empty state with balanced emphasis
func NewNegotiationState() *NegotiationState {
	return &NegotiationState{
		VendorEmphasis:     EmphasisBalanced,
		ParameterHistories: map[string][]float64{},
	}
}

// Clone returns a deep copy of the state
func (s *NegotiationState) Clone() *NegotiationState {
	if s == nil {
		return NewNegotiationState()
	}
	clone := *s
	clone.PriceConcessions = append([]float64(nil), s.PriceConcessions...)
	clone.TermsConcessions = append([]float64(nil), s.TermsConcessions...)
	clone.MesoSelections = append([]MesoSelection(nil), s.MesoSelections...)
	clone.UtilityHistory = append([]float64(nil), s.UtilityHistory...)
	clone.LastPMCounter = s.LastPMCounter.Clone()
	clone.ParameterHistories = make(map[string][]float64, len(s.ParameterHistories))
	for k, v := range s.ParameterHistories {
		clone.ParameterHistories[k] = append([]float64(nil), v...)
	}
	return &clone
}

// RecordUtilityScore appends a round's utility to the history
func (s *NegotiationState) RecordUtilityScore(u float64) {
	s.UtilityHistory = append(s.UtilityHistory, u)
}

// GetLastPMCounter returns the buyer's previous counter-offer, or nil
func (s *NegotiationState) GetLastPMCounter() *Offer {
	if s == nil {
		return nil
	}
	return s.LastPMCounter
}

// IsInPreferenceExploration reports whether MESO variance should widen
// to re-probe vendor preferences
func (s *NegotiationState) IsInPreferenceExploration() bool {
	return s != nil && s.InPreferenceExploration && s.ExplorationRoundsRemaining > 0
}
