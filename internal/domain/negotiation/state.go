package negotiation

import (
	"strings"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
)

const (
	// emphasisPriorWeight damps emphasis re-inference toward the prior
	// (Bayesian shrinkage: one observation moves confidence only so far)
	emphasisPriorWeight = 2.0
	// balancedSelectionTrigger is how many consecutive balanced MESO
	// picks enter preference-exploration mode
	balancedSelectionTrigger = 2
	// explorationRounds is how long exploration mode lasts
	explorationRounds = 2
)

// languageCues maps phrases vendors use to flag a parameter as firm
var languageCues = map[deal.Emphasis][]string{
	deal.EmphasisPrice:    {"price is firm", "can't move on price", "best price", "price is final", "last price"},
	deal.EmphasisTerms:    {"terms are firm", "payment terms are", "need net", "cash flow"},
	deal.EmphasisDelivery: {"delivery is fixed", "can't deliver sooner", "lead time"},
}

// UpdateState folds a new vendor offer into the per-deal state: it
// recomputes concessions, re-infers vendor emphasis with damping toward
// the prior, and appends parameter histories. The input state is not
// mutated; a fresh state is returned.
func UpdateState(
	state *deal.NegotiationState,
	prevVendorOffer, newVendorOffer *deal.Offer,
	vendorText string,
	pmCounter *deal.Offer,
	round int,
	cfg *deal.NegotiationConfig,
) *deal.NegotiationState {
	next := state.Clone()

	priceDelta, termsDelta := concessionDeltas(prevVendorOffer, newVendorOffer, cfg)
	if prevVendorOffer != nil && newVendorOffer != nil {
		next.PriceConcessions = append(next.PriceConcessions, priceDelta)
		next.TermsConcessions = append(next.TermsConcessions, termsDelta)
	}

	recordParameterHistory(next, newVendorOffer, cfg)
	inferEmphasis(next, priceDelta, termsDelta, vendorText)

	if pmCounter != nil {
		next.LastPMCounter = pmCounter.Clone()
	}
	if next.InPreferenceExploration {
		next.ExplorationRoundsRemaining--
		if next.ExplorationRoundsRemaining <= 0 {
			next.InPreferenceExploration = false
			next.ExplorationRoundsRemaining = 0
		}
	}
	return next
}

// concessionDeltas measures the vendor's per-round movement as fractions
// of its prior position (price) and of the terms option range
func concessionDeltas(prev, cur *deal.Offer, cfg *deal.NegotiationConfig) (priceDelta, termsDelta float64) {
	if prev == nil || cur == nil {
		return 0, 0
	}
	if prev.TotalPrice != nil && cur.TotalPrice != nil && *prev.TotalPrice > 0 {
		priceDelta = (*prev.TotalPrice - *cur.TotalPrice) / *prev.TotalPrice
	}
	if prev.PaymentTerms != "" && cur.PaymentTerms != "" && len(cfg.Terms.Options) > 1 {
		prevIdx := cfg.Terms.OptionIndex(prev.PaymentTerms)
		curIdx := cfg.Terms.OptionIndex(cur.PaymentTerms)
		if prevIdx >= 0 && curIdx >= 0 {
			prevU := cfg.Terms.Utilities[cfg.Terms.Options[prevIdx]]
			curU := cfg.Terms.Utilities[cfg.Terms.Options[curIdx]]
			termsDelta = curU - prevU // positive = vendor moved toward the buyer
		}
	}
	return priceDelta, termsDelta
}

func recordParameterHistory(state *deal.NegotiationState, offer *deal.Offer, cfg *deal.NegotiationConfig) {
	if offer == nil {
		return
	}
	if state.ParameterHistories == nil {
		state.ParameterHistories = map[string][]float64{}
	}
	if offer.TotalPrice != nil {
		state.ParameterHistories[deal.FieldTotalPrice] = append(state.ParameterHistories[deal.FieldTotalPrice], *offer.TotalPrice)
	}
	if offer.PaymentTerms != "" {
		if idx := cfg.Terms.OptionIndex(offer.PaymentTerms); idx >= 0 {
			state.ParameterHistories[deal.FieldPaymentTerms] = append(state.ParameterHistories[deal.FieldPaymentTerms], float64(idx))
		}
	}
	if offer.DeliveryDays != nil {
		state.ParameterHistories[deal.FieldDeliveryDays] = append(state.ParameterHistories[deal.FieldDeliveryDays], float64(*offer.DeliveryDays))
	}
}

// inferEmphasis decides which parameter the vendor protects most: the
// one it concedes on LEAST, damped toward the prior estimate. Explicit
// language cues override magnitude inference at high confidence.
func inferEmphasis(state *deal.NegotiationState, priceDelta, termsDelta float64, vendorText string) {
	lower := strings.ToLower(vendorText)
	for emphasis, cues := range languageCues {
		for _, cue := range cues {
			if strings.Contains(lower, cue) {
				shiftEmphasis(state, emphasis, 1.0)
				return
			}
		}
	}

	// No movement data: keep the prior
	if priceDelta == 0 && termsDelta == 0 {
		return
	}

	var observed deal.Emphasis
	switch {
	case priceDelta <= 0 && termsDelta > 0:
		observed = deal.EmphasisPrice // concedes terms, protects price
	case termsDelta <= 0 && priceDelta > 0:
		observed = deal.EmphasisTerms
	default:
		observed = deal.EmphasisBalanced
	}
	shiftEmphasis(state, observed, 0.6)
}

// shiftEmphasis applies the shrinkage update: a matching observation
// strengthens confidence, a conflicting one decays it and flips the
// emphasis once confidence collapses
func shiftEmphasis(state *deal.NegotiationState, observed deal.Emphasis, strength float64) {
	if state.VendorEmphasis == observed {
		state.EmphasisConfidence = (state.EmphasisConfidence*emphasisPriorWeight + strength) / (emphasisPriorWeight + 1)
		return
	}
	state.EmphasisConfidence = state.EmphasisConfidence * emphasisPriorWeight / (emphasisPriorWeight + 1)
	if state.EmphasisConfidence < 0.3 {
		state.VendorEmphasis = observed
		state.EmphasisConfidence = 0.75 * strength
	}
}

// RecordMesoSelection folds a vendor's MESO pick into the state. The
// selection both updates emphasis inference and, after enough
// consecutive balanced picks, enters preference-exploration mode.
func RecordMesoSelection(state *deal.NegotiationState, mesoType deal.MesoType, optionID string, label deal.MesoLabel, round int) *deal.NegotiationState {
	next := state.Clone()
	next.MesoSelections = append(next.MesoSelections, deal.MesoSelection{
		Round:    round,
		Type:     mesoType,
		OptionID: optionID,
		Label:    label,
	})

	switch label {
	case deal.MesoLabelBalanced:
		next.ConsecutiveBalancedSelections++
		if next.ConsecutiveBalancedSelections >= balancedSelectionTrigger {
			next.InPreferenceExploration = true
			next.ExplorationRoundsRemaining = explorationRounds
		}
	case deal.MesoLabelPriceFavoring:
		next.ConsecutiveBalancedSelections = 0
		// Picking the price-favoring bundle reveals price sensitivity
		shiftEmphasis(next, deal.EmphasisPrice, 0.8)
	case deal.MesoLabelTermsFavoring:
		next.ConsecutiveBalancedSelections = 0
		shiftEmphasis(next, deal.EmphasisTerms, 0.8)
	}
	return next
}
