package negotiation

import (
	"math"
	"time"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
)

const (
	// fallbackTarget applies when a requisition has no priced products
	fallbackTarget = 1000.0
	// anchorRatio and maxRatio position the stance around the target
	anchorRatio = 0.85
	maxRatio    = 1.25
	// concessionDivisor splits the target-to-max band into nominal steps
	concessionDivisor = 6.0
	// historicalSampleFloor is the minimum accepted-deal sample before
	// a vendor's history is allowed to shift the anchor
	historicalSampleFloor = 3
)

// defaultTermsOptions is the canonical ordered option set
var defaultTermsOptions = []string{"Net 30", "Net 60", "Net 90"}

var defaultTermsUtilities = map[string]float64{
	"Net 30": 0.2,
	"Net 60": 0.6,
	"Net 90": 1.0,
}

// WizardPayload is the closed, typed form of the PM setup wizard.
// Unknown wire fields are dropped at decode time; zero values leave the
// corresponding defaults untouched.
type WizardPayload struct {
	Priority          deal.Priority       `json:"priority,omitempty"`
	AcceptThreshold   float64             `json:"accept_threshold,omitempty"`
	EscalateThreshold float64             `json:"escalate_threshold,omitempty"`
	WalkawayThreshold float64             `json:"walkaway_threshold,omitempty"`
	PriceWeight       float64             `json:"price_weight,omitempty"`
	TermsWeight       float64             `json:"terms_weight,omitempty"`
	MaxRounds         int                 `json:"max_rounds,omitempty"`
	DynamicRounds     *deal.DynamicRounds `json:"dynamic_rounds,omitempty"`
	AdaptiveEnabled   bool                `json:"adaptive_enabled,omitempty"`
	PreferredDelivery *time.Time          `json:"preferred_delivery,omitempty"`
	RequiredDelivery  *time.Time          `json:"required_delivery,omitempty"`
}

// ConfigBuilder derives a deal's negotiation config from its
// requisition, the wizard payload and the vendor's history
type ConfigBuilder struct{}

// NewConfigBuilder creates a config builder
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

// BuildFromRequisition derives the default stance: target is the summed
// product target (fallback 1000), anchor 0.85x, reservation 1.25x, and
// a concession step of one sixth of the target-to-reservation band.
func (b *ConfigBuilder) BuildFromRequisition(req *deal.Requisition) *deal.NegotiationConfig {
	target := fallbackTarget
	if req != nil {
		if t := req.TargetTotal(); t > 0 {
			target = t
		}
	}
	maxAcceptable := maxRatio * target
	return &deal.NegotiationConfig{
		Price: deal.PriceParameter{
			Weight:         0.6,
			Anchor:         anchorRatio * target,
			Target:         target,
			MaxAcceptable:  maxAcceptable,
			ConcessionStep: (maxAcceptable - target) / concessionDivisor,
		},
		Terms: deal.TermsParameter{
			Weight:    0.4,
			Options:   append([]string(nil), defaultTermsOptions...),
			Utilities: copyUtilities(defaultTermsUtilities),
		},
		AcceptThreshold:   0.70,
		EscalateThreshold: 0.50,
		WalkawayThreshold: 0.30,
		MaxRounds:         6,
		Priority:          deal.PriorityMedium,
	}
}

// ApplyWizard overlays the PM's wizard answers. Priority tunes the
// thresholds (HIGH tightens, LOW loosens); explicit values win over
// priority presets.
func (b *ConfigBuilder) ApplyWizard(cfg *deal.NegotiationConfig, wizard *WizardPayload) {
	if wizard == nil {
		return
	}
	if wizard.Priority != "" {
		cfg.Priority = wizard.Priority
		switch wizard.Priority {
		case deal.PriorityHigh:
			cfg.AcceptThreshold = 0.75
			cfg.EscalateThreshold = 0.55
			cfg.WalkawayThreshold = 0.35
			cfg.Price.Weight = 0.7
			cfg.Terms.Weight = 0.3
		case deal.PriorityLow:
			cfg.AcceptThreshold = 0.60
			cfg.EscalateThreshold = 0.45
			cfg.WalkawayThreshold = 0.25
			cfg.Price.Weight = 0.5
			cfg.Terms.Weight = 0.5
		}
	}
	if wizard.AcceptThreshold > 0 {
		cfg.AcceptThreshold = wizard.AcceptThreshold
	}
	if wizard.EscalateThreshold > 0 {
		cfg.EscalateThreshold = wizard.EscalateThreshold
	}
	if wizard.WalkawayThreshold > 0 {
		cfg.WalkawayThreshold = wizard.WalkawayThreshold
	}
	if wizard.PriceWeight > 0 && wizard.TermsWeight > 0 {
		cfg.Price.Weight = wizard.PriceWeight
		cfg.Terms.Weight = wizard.TermsWeight
	}
	if wizard.MaxRounds > 0 {
		cfg.MaxRounds = wizard.MaxRounds
	}
	if wizard.DynamicRounds != nil {
		cfg.DynamicRounds = wizard.DynamicRounds
	}
	if wizard.AdaptiveEnabled {
		cfg.Adaptive = &deal.AdaptiveFeatures{Enabled: true}
	}
	if wizard.PreferredDelivery != nil && wizard.RequiredDelivery != nil {
		// Carving out a delivery weight rebalances price and terms
		// proportionally so the weights still sum to 1
		const deliveryWeight = 0.2
		scale := 1 - deliveryWeight
		total := cfg.Price.Weight + cfg.Terms.Weight
		cfg.Price.Weight = cfg.Price.Weight / total * scale
		cfg.Terms.Weight = cfg.Terms.Weight / total * scale
		cfg.Delivery = &deal.DeliveryParameter{
			Weight:        deliveryWeight,
			OrderDate:     time.Now().UTC().Truncate(24 * time.Hour),
			PreferredDate: *wizard.PreferredDelivery,
			RequiredDate:  *wizard.RequiredDelivery,
			MaxLateDays:   14,
		}
	}
}

// ApplyHistoricalAnchor shifts the anchor toward the target when the
// vendor's acceptance history is deep enough: by the smaller of 10% of
// the anchor-to-target distance and half the vendor's mean final
// discount of the target.
func (b *ConfigBuilder) ApplyHistoricalAnchor(cfg *deal.NegotiationConfig, profile *deal.VendorProfile) {
	if profile == nil || profile.AcceptedCount < historicalSampleFloor {
		return
	}
	mu := profile.MeanFinalDiscount
	if mu <= 0 {
		return
	}
	shift := math.Min(
		0.10*(cfg.Price.Target-cfg.Price.Anchor),
		0.5*mu*cfg.Price.Target,
	)
	if shift > 0 {
		cfg.Price.Anchor += shift
	}
}

func copyUtilities(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
