package negotiation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
)

// emphasisConfidenceFloor is the confidence above which vendor emphasis
// redirects concessions
const emphasisConfidenceFloor = 0.6

// DecisionInput gathers everything a single round's decision needs.
// Strategy is optional; when nil the nominal concession pace applies.
type DecisionInput struct {
	Config   *deal.NegotiationConfig
	Offer    *deal.AccumulatedOffer
	Round    int // the in-progress round being decided
	State    *deal.NegotiationState
	Signals  *BehavioralSignals
	Strategy *AdaptiveStrategy
}

// Engine is the per-round decision engine. It is a pure function of its
// input: no I/O, no clock reads beyond what the input carries.
type Engine struct{}

// NewEngine creates a decision engine
func NewEngine() *Engine {
	return &Engine{}
}

// Decide evaluates the current offer against the stance and picks one of
// ACCEPT, COUNTER, ESCALATE, WALK_AWAY or ASK_CLARIFY.
//
// Selection order (ties resolve to the earlier action):
//  1. incomplete offer           -> ASK_CLARIFY
//  2. U >= accept_threshold      -> ACCEPT
//  3. round >= max (hard cap honored when extension fired)
//     U >= escalate_threshold    -> ESCALATE, else WALK_AWAY
//  4. U < walkaway_threshold and no convergence over last 2 rounds
//     -> WALK_AWAY
//  5. otherwise                  -> COUNTER
func (e *Engine) Decide(in DecisionInput) *deal.Decision {
	cfg := in.Config
	thresholds := deal.Thresholds{
		Accept:   cfg.AcceptThreshold,
		Escalate: cfg.EscalateThreshold,
		Walkaway: cfg.WalkawayThreshold,
	}

	if in.Offer == nil || !in.Offer.IsComplete {
		return &deal.Decision{
			Action: deal.ActionAskClarify,
			Explainability: deal.Explainability{
				Thresholds: thresholds,
				Reason:     clarifyReason(in.Offer),
			},
		}
	}

	breakdown := EvaluateUtility(&in.Offer.Offer, cfg)
	utility := breakdown.Total
	explain := deal.Explainability{
		Components: breakdown.Components(),
		Thresholds: thresholds,
		Behavioral: behavioralExplain(in.Signals, in.Strategy),
	}

	if utility >= cfg.AcceptThreshold {
		explain.Reason = fmt.Sprintf("utility %.3f meets accept threshold %.2f", utility, cfg.AcceptThreshold)
		return &deal.Decision{Action: deal.ActionAccept, UtilityScore: utility, Explainability: explain}
	}

	maxRounds := e.effectiveMaxRounds(in)
	if in.Round >= maxRounds {
		if utility >= cfg.EscalateThreshold {
			explain.Reason = fmt.Sprintf("round limit %d reached with utility %.3f above escalate threshold %.2f",
				maxRounds, utility, cfg.EscalateThreshold)
			return &deal.Decision{Action: deal.ActionEscalate, UtilityScore: utility, Explainability: explain}
		}
		explain.Reason = fmt.Sprintf("round limit %d reached with utility %.3f below escalate threshold %.2f",
			maxRounds, utility, cfg.EscalateThreshold)
		return &deal.Decision{Action: deal.ActionWalkAway, UtilityScore: utility, Explainability: explain}
	}

	if utility < cfg.WalkawayThreshold && !e.showsConvergence(in) {
		explain.Reason = fmt.Sprintf("utility %.3f below walkaway threshold %.2f with no convergence over last 2 rounds",
			utility, cfg.WalkawayThreshold)
		return &deal.Decision{Action: deal.ActionWalkAway, UtilityScore: utility, Explainability: explain}
	}

	counter := e.buildCounter(in)
	projected := EvaluateUtility(counter, cfg)
	explain.Reason = fmt.Sprintf("utility %.3f between walkaway %.2f and accept %.2f; countering toward projected %.3f",
		utility, cfg.WalkawayThreshold, cfg.AcceptThreshold, projected.Total)
	return &deal.Decision{
		Action:         deal.ActionCounter,
		UtilityScore:   utility,
		CounterOffer:   counter,
		Explainability: explain,
	}
}

// effectiveMaxRounds honors a fired auto-extension up to the hard cap
func (e *Engine) effectiveMaxRounds(in DecisionInput) int {
	if in.Strategy != nil && in.Strategy.ShouldExtendRounds {
		return in.Config.HardMaxRounds()
	}
	return in.Config.SoftMaxRounds()
}

// showsConvergence looks at the vendor's last two concession deltas.
// A single offer is not enough evidence of divergence, so the first
// round always counts as potentially converging.
func (e *Engine) showsConvergence(in DecisionInput) bool {
	if in.Signals != nil {
		if in.Signals.Rounds < 2 {
			return true
		}
		return in.Signals.ConvergenceRate > 0
	}
	if in.State == nil {
		return true
	}
	concessions := in.State.PriceConcessions
	if len(concessions) == 0 {
		return true
	}
	recent := concessions
	if len(recent) > 2 {
		recent = recent[len(recent)-2:]
	}
	for _, c := range recent {
		if c > 0 {
			return true
		}
	}
	return false
}

// buildCounter constructs the buyer's counter-offer.
//
// Price starts from the last PM counter (or the anchor) and moves toward
// the vendor by the concession step, scaled by adaptive aggressiveness
// and redirected away from whatever the vendor emphasizes. The buyer
// never crosses its reservation price and never walks a counter back.
func (e *Engine) buildCounter(in DecisionInput) *deal.Offer {
	cfg := in.Config
	vendor := &in.Offer.Offer
	last := in.State.GetLastPMCounter()

	base := cfg.Price.Anchor
	if last != nil && last.TotalPrice != nil {
		base = *last.TotalPrice
	}

	step := cfg.Price.ConcessionStep
	if in.Strategy != nil {
		step *= in.Strategy.Aggressiveness
	}
	step *= e.priceEmphasisScale(in.State)

	next := base + step
	if vendor.TotalPrice != nil && next > *vendor.TotalPrice {
		next = *vendor.TotalPrice
	}
	if next > cfg.Price.MaxAcceptable {
		next = cfg.Price.MaxAcceptable
	}
	// Monotonicity: the price offered to the vendor only moves toward it
	if next < base {
		next = base
	}
	next = math.Round(next*100) / 100

	counter := &deal.Offer{TotalPrice: &next}
	counter.PaymentTerms = e.counterTerms(in, last, vendor)
	e.counterDelivery(cfg, vendor, counter)
	return counter
}

// priceEmphasisScale concedes less on price when the vendor cares about
// price most, and more when the vendor's emphasis lies elsewhere
func (e *Engine) priceEmphasisScale(state *deal.NegotiationState) float64 {
	if state == nil || state.EmphasisConfidence < emphasisConfidenceFloor {
		return 1.0
	}
	switch state.VendorEmphasis {
	case deal.EmphasisPrice:
		return 1.0 - 0.5*state.EmphasisConfidence
	case deal.EmphasisTerms, deal.EmphasisDelivery:
		return 1.0 + 0.5*state.EmphasisConfidence
	default:
		return 1.0
	}
}

// counterTerms holds firm on terms when the vendor's emphasis is terms,
// otherwise steps one option toward the vendor's stated preference
func (e *Engine) counterTerms(in DecisionInput, last, vendor *deal.Offer) string {
	cfg := in.Config
	current := cfg.Terms.BestOption()
	if last != nil && last.PaymentTerms != "" {
		current = last.PaymentTerms
	}

	if in.State != nil && in.State.VendorEmphasis == deal.EmphasisTerms &&
		in.State.EmphasisConfidence >= emphasisConfidenceFloor {
		return current
	}

	if vendor.PaymentTerms == "" {
		return current
	}
	currentIdx := cfg.Terms.OptionIndex(current)
	vendorIdx := cfg.Terms.OptionIndex(vendor.PaymentTerms)
	if vendorIdx < 0 || currentIdx < 0 || vendorIdx == currentIdx {
		return current
	}
	if vendorIdx > currentIdx {
		return cfg.Terms.Options[currentIdx+1]
	}
	return cfg.Terms.Options[currentIdx-1]
}

// counterDelivery proposes the preferred date; when the vendor states a
// later date, offers the earlier of the vendor's date and the required
// date
func (e *Engine) counterDelivery(cfg *deal.NegotiationConfig, vendor, counter *deal.Offer) {
	if cfg.Delivery == nil {
		return
	}
	proposed := cfg.Delivery.PreferredDate

	vendorDate := vendor.DeliveryDate
	if vendorDate == nil && vendor.DeliveryDays != nil {
		projected := cfg.Delivery.OrderDate.AddDate(0, 0, *vendor.DeliveryDays)
		vendorDate = &projected
	}
	if vendorDate != nil && vendorDate.After(proposed) {
		proposed = earlierOf(*vendorDate, cfg.Delivery.RequiredDate)
	}
	counter.DeliveryDate = &proposed
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func clarifyReason(acc *deal.AccumulatedOffer) string {
	if acc == nil || len(acc.MissingFields) == 0 {
		return "no structured offer could be extracted from the message"
	}
	return fmt.Sprintf("offer is missing required fields: %s", strings.Join(acc.MissingFields, ", "))
}

func behavioralExplain(signals *BehavioralSignals, strategy *AdaptiveStrategy) *deal.BehavioralExplain {
	if signals == nil {
		return nil
	}
	explain := &deal.BehavioralExplain{
		Momentum:        signals.Momentum,
		ConvergenceRate: signals.ConvergenceRate,
		IsStalling:      signals.IsStalling,
		Aggressiveness:  1.0,
	}
	if strategy != nil {
		explain.Strategy = strategy.Label
		explain.Aggressiveness = strategy.Aggressiveness
	}
	return explain
}
