package negotiation

import (
	"math"
	"strings"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
)

// Sentiment is a coarse keyword-based read of the vendor's latest tone
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

const (
	// momentumAlpha is the EWMA smoothing factor for signed concessions
	momentumAlpha = 0.5
	// stallEpsilon is the relative price change below which the vendor
	// counts as not moving
	stallEpsilon = 0.005
	// stallWindow is how many recent rounds must show no movement
	stallWindow = 2
	// convergenceTheta is the closure rate above which the gap counts
	// as converging
	convergenceTheta = 0.05
)

// BehavioralSignals summarizes vendor movement across the history
type BehavioralSignals struct {
	ConcessionVelocity float64
	ConvergenceRate    float64
	Momentum           float64 // in [-1, 1]
	IsStalling         bool
	IsConverging       bool
	IsDiverging        bool
	LatestSentiment    Sentiment
	Rounds             int
}

// AdaptiveStrategy is the pacing adjustment derived from the signals
type AdaptiveStrategy struct {
	Label              deal.StrategyLabel
	Aggressiveness     float64 // scales the concession step; 1.0 = nominal
	ShouldExtendRounds bool
}

var positiveCues = []string{
	"sounds good", "we can work", "happy to", "glad", "agree", "deal",
	"appreciate", "works for us", "flexible",
}

var negativeCues = []string{
	"final offer", "cannot", "can't", "won't", "no further", "take it or leave",
	"unacceptable", "impossible", "last price", "firm",
}

// ComputeSignals derives momentum, convergence and stall signals from
// the vendor's price series and the buyer's counter series. Series are
// per completed round, oldest first; latestText is the newest vendor
// message.
func ComputeSignals(vendorPrices, pmCounters []float64, latestText string) BehavioralSignals {
	signals := BehavioralSignals{
		LatestSentiment: classifySentiment(latestText),
		Rounds:          len(vendorPrices),
	}

	if len(vendorPrices) >= 2 {
		var velocitySum, momentum float64
		count := 0
		for i := 1; i < len(vendorPrices); i++ {
			prev, cur := vendorPrices[i-1], vendorPrices[i]
			if prev <= 0 {
				continue
			}
			rate := (prev - cur) / prev // positive = vendor conceding
			velocitySum += rate
			momentum = momentumAlpha*rate + (1-momentumAlpha)*momentum
			count++
		}
		if count > 0 {
			signals.ConcessionVelocity = velocitySum / float64(count)
		}
		signals.Momentum = math.Max(-1, math.Min(1, momentum*10))

		last, prev := vendorPrices[len(vendorPrices)-1], vendorPrices[len(vendorPrices)-2]
		signals.IsDiverging = last > prev*(1+stallEpsilon)
		signals.IsStalling = isStalling(vendorPrices)
	}

	signals.ConvergenceRate = convergenceRate(vendorPrices, pmCounters)
	signals.IsConverging = signals.ConvergenceRate > convergenceTheta
	return signals
}

// isStalling reports no meaningful movement over the last stallWindow steps
func isStalling(prices []float64) bool {
	if len(prices) < stallWindow+1 {
		return false
	}
	recent := prices[len(prices)-stallWindow-1:]
	for i := 1; i < len(recent); i++ {
		if recent[i-1] == 0 {
			return false
		}
		if math.Abs(recent[i]-recent[i-1])/recent[i-1] > stallEpsilon {
			return false
		}
	}
	return true
}

// convergenceRate is the mean fractional closure of the vendor-PM price
// gap per round
func convergenceRate(vendorPrices, pmCounters []float64) float64 {
	n := len(vendorPrices)
	if len(pmCounters) < n {
		n = len(pmCounters)
	}
	if n < 2 {
		return 0
	}
	var sum float64
	count := 0
	for i := 1; i < n; i++ {
		prevGap := vendorPrices[i-1] - pmCounters[i-1]
		curGap := vendorPrices[i] - pmCounters[i]
		if prevGap <= 0 {
			continue
		}
		sum += (prevGap - curGap) / prevGap
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func classifySentiment(text string) Sentiment {
	lower := strings.ToLower(text)
	score := 0
	for _, cue := range positiveCues {
		if strings.Contains(lower, cue) {
			score++
		}
	}
	for _, cue := range negativeCues {
		if strings.Contains(lower, cue) {
			score--
		}
	}
	switch {
	case score > 0:
		return SentimentPositive
	case score < 0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// ComputeAdaptiveStrategy turns signals into a pacing strategy for the
// round. Extension past the soft cap honors dynamic_rounds.hard_max.
func ComputeAdaptiveStrategy(signals BehavioralSignals, cfg *deal.NegotiationConfig, round int) AdaptiveStrategy {
	softMax := cfg.SoftMaxRounds()
	hardMax := cfg.HardMaxRounds()

	// Converging near the soft cap: worth buying more rounds
	if cfg.DynamicRounds != nil && cfg.DynamicRounds.AutoExtendEnabled &&
		signals.IsConverging && round >= softMax-1 && round < hardMax {
		return AdaptiveStrategy{
			Label:              deal.StrategyExtend,
			Aggressiveness:     1.0,
			ShouldExtendRounds: true,
		}
	}

	if signals.IsStalling || signals.LatestSentiment == SentimentNegative {
		return AdaptiveStrategy{Label: deal.StrategyHoldFirm, Aggressiveness: 0.5}
	}
	if signals.IsDiverging {
		return AdaptiveStrategy{Label: deal.StrategySlowConcede, Aggressiveness: 0.6}
	}

	// Deadline pressure: few rounds left and the vendor is moving
	if round >= softMax-1 && signals.Momentum > 0 {
		return AdaptiveStrategy{Label: deal.StrategyFastConcede, Aggressiveness: 1.4}
	}

	if signals.IsConverging {
		if signals.ConvergenceRate > 3*convergenceTheta {
			return AdaptiveStrategy{Label: deal.StrategyMatchPace, Aggressiveness: 1.0}
		}
		return AdaptiveStrategy{Label: deal.StrategySlowConcede, Aggressiveness: 0.75}
	}

	return AdaptiveStrategy{Label: deal.StrategyMatchPace, Aggressiveness: 1.0}
}
