package negotiation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

const (
	// mesoDefaultVariance bounds option utilities around the target
	mesoDefaultVariance = 0.03
	// mesoFinalVariance is the tightened band for closing bundles
	mesoFinalVariance = 0.02
	// mesoExplorationVariance widens the band while re-probing preferences
	mesoExplorationVariance = 0.05
	// mesoFinalUtilityFloor triggers a closing bundle
	mesoFinalUtilityFloor = 0.75
	// mesoProbeMargin lifts the target slightly above the current offer
	mesoProbeMargin = 0.05
	// stallRepeatRounds is how many identical consecutive vendor values
	// constitute a stall
	stallRepeatRounds = 3
)

// MesoGenerator produces bundles of equi-utility offers that differ in
// which parameter they favor, probing vendor preferences.
type MesoGenerator struct{}

// NewMesoGenerator creates a MESO generator
func NewMesoGenerator() *MesoGenerator {
	return &MesoGenerator{}
}

// ShouldUseMeso gates bundle generation: not before round 2, not past
// the soft round cap, and at most every other round.
func ShouldUseMeso(round, softMax, prevMesoCount int) bool {
	if round < 2 || round > softMax {
		return false
	}
	return prevMesoCount*2 <= round
}

// Generate builds a three-option bundle at a shared target utility.
// The bundle type is chosen from context: the first bundle in a deal is
// initial, a bundle at high utility is final (tight variance, aims to
// close), anything after a prior round is dynamic and perturbs away from
// the previously selected option to widen the preference signal.
func (g *MesoGenerator) Generate(
	cfg *deal.NegotiationConfig,
	current *deal.Offer,
	currentUtility float64,
	dealID shared.ID,
	round int,
	prev *deal.MesoRound,
	state *deal.NegotiationState,
) *deal.MesoRound {
	genType := deal.MesoTypeInitial
	if currentUtility >= mesoFinalUtilityFloor {
		genType = deal.MesoTypeFinal
	} else if prev != nil {
		genType = deal.MesoTypeDynamic
	}

	variance := mesoDefaultVariance
	switch {
	case genType == deal.MesoTypeFinal:
		variance = mesoFinalVariance
	case state.IsInPreferenceExploration():
		variance = mesoExplorationVariance
	}

	target := currentUtility + mesoProbeMargin
	if genType == deal.MesoTypeFinal {
		// Closing bundles stay near the current utility so the vendor
		// has no reason to re-open settled parameters
		target = currentUtility
	}
	if genType == deal.MesoTypeDynamic && prev != nil {
		target = g.perturbTarget(target, prev)
	}
	if target > 1-variance {
		target = 1 - variance
	}
	if target < variance {
		target = variance
	}

	mesoID := shared.NewID()
	options := g.buildOptions(cfg, current, currentUtility, target, variance, mesoID)
	if len(options) == 0 {
		return nil
	}

	return &deal.MesoRound{
		ID:            mesoID,
		DealID:        dealID,
		Round:         round,
		Type:          genType,
		Options:       options,
		TargetUtility: target,
		Variance:      variance,
	}
}

// perturbTarget shifts the target away from the neighborhood of the
// previously selected option's utility
func (g *MesoGenerator) perturbTarget(target float64, prev *deal.MesoRound) float64 {
	selected := prev.OptionByID(prev.SelectedOptionID)
	if selected == nil {
		return target
	}
	if selected.Utility >= prev.TargetUtility {
		return target + mesoDefaultVariance
	}
	return target - mesoDefaultVariance
}

// buildOptions solves one option per trade-off axis. For each candidate
// terms option the price is solved so the bundle lands on the target
// utility; candidates that cannot reach the band are discarded.
func (g *MesoGenerator) buildOptions(
	cfg *deal.NegotiationConfig,
	current *deal.Offer,
	currentUtility, target, variance float64,
	mesoID shared.ID,
) []deal.MesoOption {
	type candidate struct {
		label deal.MesoLabel
		terms string
	}

	ordered := g.termsByUtility(cfg)
	if len(ordered) == 0 {
		return nil
	}
	// price-favoring concedes price and keeps buyer-friendly terms;
	// terms-favoring concedes terms and keeps a tighter price
	candidates := []candidate{
		{deal.MesoLabelPriceFavoring, ordered[len(ordered)-1]},
		{deal.MesoLabelBalanced, ordered[len(ordered)/2]},
		{deal.MesoLabelTermsFavoring, ordered[0]},
	}

	var options []deal.MesoOption
	for i, c := range candidates {
		price, ok := g.solvePrice(cfg, c.terms, target)
		if !ok {
			continue
		}
		offer := deal.Offer{TotalPrice: &price, PaymentTerms: c.terms}
		if cfg.Delivery != nil {
			preferred := cfg.Delivery.PreferredDate
			offer.DeliveryDate = &preferred
		}
		utility := EvaluateUtility(&offer, cfg).Total
		if math.Abs(utility-target) > variance {
			continue
		}
		options = append(options, deal.MesoOption{
			ID:               fmt.Sprintf("%s-opt-%d", shortID(mesoID), i+1),
			Label:            c.label,
			Offer:            offer,
			Utility:          utility,
			DeltaFromCurrent: utility - currentUtility,
		})
	}
	return options
}

// termsByUtility returns the configured options sorted by buyer utility,
// lowest first
func (g *MesoGenerator) termsByUtility(cfg *deal.NegotiationConfig) []string {
	ordered := append([]string(nil), cfg.Terms.Options...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return cfg.Terms.Utilities[ordered[i]] < cfg.Terms.Utilities[ordered[j]]
	})
	return ordered
}

// solvePrice finds the price that lands a bundle with the given terms on
// the target utility. The price component is clamped to [0,1]; the
// caller's variance check decides whether a clamped bundle still
// qualifies.
func (g *MesoGenerator) solvePrice(cfg *deal.NegotiationConfig, terms string, target float64) (float64, bool) {
	residual := target - cfg.Terms.Weight*cfg.Terms.Utilities[terms]
	if cfg.Delivery != nil {
		// Options always propose the preferred date (delivery u = 1)
		residual -= cfg.Delivery.Weight
	}
	if cfg.Price.Weight <= 0 {
		return 0, false
	}
	priceU := math.Max(0, math.Min(1, residual/cfg.Price.Weight))
	price := cfg.Price.MaxAcceptable - priceU*(cfg.Price.MaxAcceptable-cfg.Price.Anchor)
	return math.Round(price*100) / 100, true
}

func shortID(id shared.ID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// DetectStall scans the per-parameter vendor value histories. When any
// parameter repeats identically for stallRepeatRounds consecutive
// rounds, it returns a final-offer prompt for the PM response. The
// prompt never changes the engine's action on its own.
func DetectStall(histories map[string][]float64) (string, bool) {
	var stalled []string
	for param, values := range histories {
		if len(values) < stallRepeatRounds {
			continue
		}
		recent := values[len(values)-stallRepeatRounds:]
		identical := true
		for i := 1; i < len(recent); i++ {
			if recent[i] != recent[0] {
				identical = false
				break
			}
		}
		if identical {
			stalled = append(stalled, param)
		}
	}
	if len(stalled) == 0 {
		return "", false
	}
	sort.Strings(stalled)
	return fmt.Sprintf(
		"We've noticed no movement on %s over the last %d rounds. To move forward, could you share your best and final position?",
		strings.Join(stalled, ", "), stallRepeatRounds), true
}
