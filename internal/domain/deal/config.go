package deal

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// WeightSumTolerance is the allowed deviation of the parameter weight sum from 1.0
const WeightSumTolerance = 1e-6

// Priority controls how tight the default thresholds and weights are
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// PriceParameter describes the buyer's stance on total price.
// Direction is always minimize: utility is 1 at or below the anchor,
// 0 at or above the max acceptable (reservation) price.
type PriceParameter struct {
	Weight         float64 `json:"weight"`
	Anchor         float64 `json:"anchor"`
	Target         float64 `json:"target"`
	MaxAcceptable  float64 `json:"max_acceptable"`
	ConcessionStep float64 `json:"concession_step"`
}

// TermsParameter describes the buyer's stance on payment terms.
// Options is an ordered set (e.g. Net 30, Net 60, Net 90) and Utilities
// maps each option to its buyer-side utility in [0,1].
type TermsParameter struct {
	Weight    float64            `json:"weight"`
	Options   []string           `json:"options"`
	Utilities map[string]float64 `json:"utilities"`
}

// OptionIndex returns the position of an option in the ordered set, or -1
func (t *TermsParameter) OptionIndex(option string) int {
	for i, opt := range t.Options {
		if opt == option {
			return i
		}
	}
	return -1
}

// BestOption returns the option with the highest buyer-side utility
func (t *TermsParameter) BestOption() string {
	best, bestU := "", -1.0
	for _, opt := range t.Options {
		if u := t.Utilities[opt]; u > bestU {
			best, bestU = opt, u
		}
	}
	return best
}

// DeliveryParameter describes the buyer's stance on delivery, if
// configured. OrderDate is the baseline that relative vendor promises
// ("in N days") are projected from.
type DeliveryParameter struct {
	Weight        float64   `json:"weight"`
	OrderDate     time.Time `json:"order_date"`
	PreferredDate time.Time `json:"preferred_date"`
	RequiredDate  time.Time `json:"required_date"`
	MaxLateDays   int       `json:"max_late_days"`
}

// DynamicRounds allows extending the soft round cap up to a hard cap
// when the vendor is converging
type DynamicRounds struct {
	SoftMax           int  `json:"soft_max"`
	HardMax           int  `json:"hard_max"`
	AutoExtendEnabled bool `json:"auto_extend_enabled"`
}

// AdaptiveFeatures toggles the behavioral strategy layer
type AdaptiveFeatures struct {
	Enabled bool `json:"enabled"`
}

// NegotiationConfig is the buyer's full stance for one deal
type NegotiationConfig struct {
	Price             PriceParameter     `json:"total_price"`
	Terms             TermsParameter     `json:"payment_terms"`
	Delivery          *DeliveryParameter `json:"delivery,omitempty"`
	AcceptThreshold   float64            `json:"accept_threshold"`
	EscalateThreshold float64            `json:"escalate_threshold"`
	WalkawayThreshold float64            `json:"walkaway_threshold"`
	MaxRounds         int                `json:"max_rounds"`
	Priority          Priority           `json:"priority"`
	DynamicRounds     *DynamicRounds     `json:"dynamic_rounds,omitempty"`
	Adaptive          *AdaptiveFeatures  `json:"adaptive_features,omitempty"`
}

// Validate checks all config invariants up front, before any mutation
func (c *NegotiationConfig) Validate() error {
	weightSum := c.Price.Weight + c.Terms.Weight
	if c.Delivery != nil {
		weightSum += c.Delivery.Weight
	}
	if math.Abs(weightSum-1.0) > WeightSumTolerance {
		return shared.NewValidationError("parameters", fmt.Sprintf("weights must sum to 1.0, got %.6f", weightSum))
	}
	if !(c.WalkawayThreshold < c.EscalateThreshold && c.EscalateThreshold <= c.AcceptThreshold) {
		return shared.NewValidationError("thresholds",
			fmt.Sprintf("require walkaway < escalate <= accept, got %.2f/%.2f/%.2f",
				c.WalkawayThreshold, c.EscalateThreshold, c.AcceptThreshold))
	}
	for _, th := range []float64{c.AcceptThreshold, c.EscalateThreshold, c.WalkawayThreshold} {
		if th < 0 || th > 1 {
			return shared.NewValidationError("thresholds", "thresholds must lie in [0,1]")
		}
	}
	if !(c.Price.Anchor <= c.Price.Target && c.Price.Target <= c.Price.MaxAcceptable) {
		return shared.NewValidationError("total_price", "require anchor <= target <= max_acceptable")
	}
	if c.Price.MaxAcceptable <= c.Price.Anchor {
		return shared.NewValidationError("total_price", "max_acceptable must exceed anchor")
	}
	if c.Price.ConcessionStep <= 0 {
		return shared.NewValidationError("total_price", "concession_step must be positive")
	}
	if len(c.Terms.Options) == 0 {
		return shared.NewValidationError("payment_terms", "at least one option is required")
	}
	for _, opt := range c.Terms.Options {
		u, ok := c.Terms.Utilities[opt]
		if !ok {
			return shared.NewValidationError("payment_terms", fmt.Sprintf("option %q has no utility", opt))
		}
		if u < 0 || u > 1 {
			return shared.NewValidationError("payment_terms", fmt.Sprintf("utility for %q must lie in [0,1]", opt))
		}
	}
	if c.MaxRounds < 1 {
		return shared.NewValidationError("max_rounds", "must be at least 1")
	}
	if c.DynamicRounds != nil && c.DynamicRounds.HardMax < c.DynamicRounds.SoftMax {
		return shared.NewValidationError("dynamic_rounds", "hard_max must be >= soft_max")
	}
	return nil
}

// SoftMaxRounds returns the round cap before any auto-extension
func (c *NegotiationConfig) SoftMaxRounds() int {
	if c.DynamicRounds != nil && c.DynamicRounds.SoftMax > 0 {
		return c.DynamicRounds.SoftMax
	}
	return c.MaxRounds
}

// HardMaxRounds returns the absolute round ceiling
func (c *NegotiationConfig) HardMaxRounds() int {
	if c.DynamicRounds != nil && c.DynamicRounds.HardMax > 0 {
		return c.DynamicRounds.HardMax
	}
	return c.MaxRounds
}

// AdaptiveEnabled reports whether the behavioral strategy layer is on
func (c *NegotiationConfig) AdaptiveEnabled() bool {
	return c.Adaptive != nil && c.Adaptive.Enabled
}

// configWire mirrors the persisted JSON shape: parameters keyed by name.
// The legacy unit_price key is rejected outright; configs that mix the
// two price notions cannot be migrated automatically.
type configWire struct {
	Parameters        map[string]json.RawMessage `json:"parameters"`
	AcceptThreshold   float64                    `json:"accept_threshold"`
	EscalateThreshold float64                    `json:"escalate_threshold"`
	WalkawayThreshold float64                    `json:"walkaway_threshold"`
	MaxRounds         int                        `json:"max_rounds"`
	Priority          Priority                   `json:"priority"`
	DynamicRounds     *DynamicRounds             `json:"dynamic_rounds,omitempty"`
	Adaptive          *AdaptiveFeatures          `json:"adaptive_features,omitempty"`
}

// EncodeConfig serializes a config to its persisted JSON form
func EncodeConfig(c *NegotiationConfig) ([]byte, error) {
	wire := configWire{
		Parameters:        map[string]json.RawMessage{},
		AcceptThreshold:   c.AcceptThreshold,
		EscalateThreshold: c.EscalateThreshold,
		WalkawayThreshold: c.WalkawayThreshold,
		MaxRounds:         c.MaxRounds,
		Priority:          c.Priority,
		DynamicRounds:     c.DynamicRounds,
		Adaptive:          c.Adaptive,
	}
	price, err := json.Marshal(c.Price)
	if err != nil {
		return nil, err
	}
	wire.Parameters["total_price"] = price
	terms, err := json.Marshal(c.Terms)
	if err != nil {
		return nil, err
	}
	wire.Parameters["payment_terms"] = terms
	if c.Delivery != nil {
		delivery, err := json.Marshal(c.Delivery)
		if err != nil {
			return nil, err
		}
		wire.Parameters["delivery"] = delivery
	}
	return json.Marshal(wire)
}

// DecodeConfig deserializes and validates a persisted config blob.
// Unknown parameter keys are ignored, except unit_price which is refused.
func DecodeConfig(raw []byte) (*NegotiationConfig, error) {
	var wire configWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, shared.NewPermanentDependencyError("malformed negotiation config", err)
	}
	if _, ok := wire.Parameters["unit_price"]; ok {
		return nil, shared.NewValidationError("parameters", "legacy unit_price parameter is not supported; use total_price")
	}
	priceRaw, ok := wire.Parameters["total_price"]
	if !ok {
		return nil, shared.NewPermanentDependencyError("negotiation config missing total_price parameter", nil)
	}
	cfg := &NegotiationConfig{
		AcceptThreshold:   wire.AcceptThreshold,
		EscalateThreshold: wire.EscalateThreshold,
		WalkawayThreshold: wire.WalkawayThreshold,
		MaxRounds:         wire.MaxRounds,
		Priority:          wire.Priority,
		DynamicRounds:     wire.DynamicRounds,
		Adaptive:          wire.Adaptive,
	}
	if err := json.Unmarshal(priceRaw, &cfg.Price); err != nil {
		return nil, shared.NewPermanentDependencyError("malformed total_price parameter", err)
	}
	if termsRaw, ok := wire.Parameters["payment_terms"]; ok {
		if err := json.Unmarshal(termsRaw, &cfg.Terms); err != nil {
			return nil, shared.NewPermanentDependencyError("malformed payment_terms parameter", err)
		}
	}
	if deliveryRaw, ok := wire.Parameters["delivery"]; ok {
		cfg.Delivery = &DeliveryParameter{}
		if err := json.Unmarshal(deliveryRaw, cfg.Delivery); err != nil {
			return nil, shared.NewPermanentDependencyError("malformed delivery parameter", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
