package negotiation

import (
	"time"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
)

// UtilityBreakdown is the result of evaluating an offer against a stance
type UtilityBreakdown struct {
	Total    float64
	Price    float64
	Terms    float64
	Delivery *float64
}

// Components converts the breakdown into its explainability form
func (b UtilityBreakdown) Components() deal.UtilityComponents {
	return deal.UtilityComponents{Price: b.Price, Terms: b.Terms, Delivery: b.Delivery}
}

// EvaluateUtility computes the multi-attribute utility of a (possibly
// partial) offer: U = Σ wᵢ·uᵢ over price, terms and delivery.
// A missing attribute contributes its weight times zero.
//
// Price is piecewise linear for a minimizing buyer: u=1 at or below the
// anchor, u=0 at or beyond the reservation price, linear in between.
// Terms is a lookup in the configured option→utility map; unknown
// options score 0. Delivery (when configured) is 1 on or before the
// preferred date, 0 past required+maxLateDays, linear in between.
func EvaluateUtility(offer *deal.Offer, cfg *deal.NegotiationConfig) UtilityBreakdown {
	var b UtilityBreakdown

	if offer.HasPrice() {
		b.Price = priceUtility(*offer.TotalPrice, &cfg.Price)
	}
	if offer.HasTerms() {
		b.Terms = cfg.Terms.Utilities[offer.PaymentTerms]
	}
	b.Total = cfg.Price.Weight*b.Price + cfg.Terms.Weight*b.Terms

	if cfg.Delivery != nil {
		var u float64
		if offer.HasDelivery() {
			u = deliveryUtility(offer, cfg.Delivery)
		}
		b.Delivery = &u
		b.Total += cfg.Delivery.Weight * u
	}
	return b
}

func priceUtility(price float64, p *deal.PriceParameter) float64 {
	if price <= p.Anchor {
		return 1
	}
	// At exactly MaxAcceptable the component is 0, never negative
	if price >= p.MaxAcceptable {
		return 0
	}
	return (p.MaxAcceptable - price) / (p.MaxAcceptable - p.Anchor)
}

func deliveryUtility(offer *deal.Offer, d *deal.DeliveryParameter) float64 {
	date := offer.DeliveryDate
	if date == nil && offer.DeliveryDays != nil {
		projected := d.OrderDate.AddDate(0, 0, *offer.DeliveryDays)
		date = &projected
	}
	if date == nil {
		return 0
	}
	if !date.After(d.PreferredDate) {
		return 1
	}
	deadline := d.RequiredDate.AddDate(0, 0, d.MaxLateDays)
	if !date.Before(deadline) {
		return 0
	}
	total := deadline.Sub(d.PreferredDate)
	late := date.Sub(d.PreferredDate)
	if total <= 0 {
		return 0
	}
	return 1 - float64(late)/float64(total)
}

// deliveryDeadline is the last date scoring above zero
func deliveryDeadline(d *deal.DeliveryParameter) time.Time {
	return d.RequiredDate.AddDate(0, 0, d.MaxLateDays)
}
