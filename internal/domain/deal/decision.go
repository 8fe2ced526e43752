package deal

// Action is the engine's per-round decision. In ties the earlier
// constant wins: ACCEPT > ESCALATE > COUNTER > WALK_AWAY.
type Action string

const (
	ActionAccept     Action = "ACCEPT"
	ActionEscalate   Action = "ESCALATE"
	ActionCounter    Action = "COUNTER"
	ActionWalkAway   Action = "WALK_AWAY"
	ActionAskClarify Action = "ASK_CLARIFY"
)

// StrategyLabel names the adaptive pacing strategy chosen for a round
type StrategyLabel string

const (
	StrategyMatchPace   StrategyLabel = "MATCH_PACE"
	StrategySlowConcede StrategyLabel = "SLOW_CONCEDE"
	StrategyFastConcede StrategyLabel = "FAST_CONCEDE"
	StrategyHoldFirm    StrategyLabel = "HOLD_FIRM"
	StrategyExtend      StrategyLabel = "EXTEND"
)

// UtilityComponents is the per-attribute utility breakdown
type UtilityComponents struct {
	Price    float64  `json:"price"`
	Terms    float64  `json:"terms"`
	Delivery *float64 `json:"delivery,omitempty"`
}

// Thresholds echoes the active config cut-offs for explainability
type Thresholds struct {
	Accept   float64 `json:"accept"`
	Escalate float64 `json:"escalate"`
	Walkaway float64 `json:"walkaway"`
}

// BehavioralExplain carries the behavioral signals that modulated the decision
type BehavioralExplain struct {
	Momentum        float64       `json:"momentum"`
	Strategy        StrategyLabel `json:"strategy"`
	ConvergenceRate float64       `json:"convergence_rate"`
	IsStalling      bool          `json:"is_stalling"`
	Aggressiveness  float64       `json:"aggressiveness"`
}

// MesoExplain carries the MESO bundle attached to a round, if any
type MesoExplain struct {
	Options       []MesoOption `json:"options"`
	TargetUtility float64      `json:"target_utility"`
	Variance      float64      `json:"variance"`
	IsFinal       bool         `json:"is_final"`
	StallPrompt   string       `json:"stall_prompt,omitempty"`
}

// Explainability is the auditable rationale attached to every decision
type Explainability struct {
	Components UtilityComponents  `json:"components"`
	Thresholds Thresholds         `json:"thresholds"`
	Reason     string             `json:"reason"`
	Behavioral *BehavioralExplain `json:"behavioral,omitempty"`
	Meso       *MesoExplain       `json:"meso,omitempty"`
}

// Decision is the engine output for one round
type Decision struct {
	Action         Action         `json:"action"`
	UtilityScore   float64        `json:"utility_score"`
	CounterOffer   *Offer         `json:"counter_offer,omitempty"`
	Explainability Explainability `json:"explainability"`
}
