package deal

import "github.com/yug-shah0106/accordo-engine/internal/domain/shared"

// Currency codes the parser and config builder understand
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyINR Currency = "INR"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyAUD Currency = "AUD"
)

// RequisitionProduct is one line item on a requisition. Only the fields
// the engine reads are modeled here.
type RequisitionProduct struct {
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	UnitTargetPrice float64 `json:"unit_target_price"`
}

// Requisition is the buyer-side purchase request a deal is opened for
type Requisition struct {
	ID       shared.ID            `json:"id"`
	Currency Currency             `json:"currency"`
	Products []RequisitionProduct `json:"products"`
}

// TargetTotal sums quantity times unit target across all products
func (r *Requisition) TargetTotal() float64 {
	var total float64
	for _, p := range r.Products {
		total += float64(p.Quantity) * p.UnitTargetPrice
	}
	return total
}
