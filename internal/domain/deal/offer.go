package deal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// Offer field names used for completeness bookkeeping and clarification prompts
const (
	FieldTotalPrice     = "total_price"
	FieldPaymentTerms   = "payment_terms"
	FieldDeliveryDate   = "delivery_date"
	FieldDeliveryDays   = "delivery_days"
	FieldAdvancePercent = "advance_payment_percent"
	FieldWarrantyMonths = "warranty_months"
)

// Offer is a structured counterparty proposal. Any field may be absent;
// the parser never fabricates values.
type Offer struct {
	TotalPrice            *float64   `json:"total_price,omitempty"`
	PaymentTerms          string     `json:"payment_terms,omitempty"` // canonical "Net N"
	DeliveryDate          *time.Time `json:"delivery_date,omitempty"`
	DeliveryDays          *int       `json:"delivery_days,omitempty"`
	AdvancePaymentPercent *float64   `json:"advance_payment_percent,omitempty"`
	WarrantyMonths        *int       `json:"warranty_months,omitempty"`
}

// HasPrice reports whether the offer carries a total price
func (o *Offer) HasPrice() bool {
	return o != nil && o.TotalPrice != nil
}

// HasTerms reports whether the offer carries payment terms
func (o *Offer) HasTerms() bool {
	return o != nil && o.PaymentTerms != ""
}

// HasDelivery reports whether the offer carries any delivery information
func (o *Offer) HasDelivery() bool {
	return o != nil && (o.DeliveryDate != nil || o.DeliveryDays != nil)
}

// IsEmpty reports whether no field was extracted at all
func (o *Offer) IsEmpty() bool {
	return o == nil || (!o.HasPrice() && !o.HasTerms() && !o.HasDelivery() &&
		o.AdvancePaymentPercent == nil && o.WarrantyMonths == nil)
}

// ProvidedFields lists the populated field names in canonical order
func (o *Offer) ProvidedFields() []string {
	if o == nil {
		return nil
	}
	var fields []string
	if o.TotalPrice != nil {
		fields = append(fields, FieldTotalPrice)
	}
	if o.PaymentTerms != "" {
		fields = append(fields, FieldPaymentTerms)
	}
	if o.DeliveryDate != nil {
		fields = append(fields, FieldDeliveryDate)
	}
	if o.DeliveryDays != nil {
		fields = append(fields, FieldDeliveryDays)
	}
	if o.AdvancePaymentPercent != nil {
		fields = append(fields, FieldAdvancePercent)
	}
	if o.WarrantyMonths != nil {
		fields = append(fields, FieldWarrantyMonths)
	}
	sort.Strings(fields)
	return fields
}

// Clone returns a deep copy of the offer
func (o *Offer) Clone() *Offer {
	if o == nil {
		return nil
	}
	clone := &Offer{PaymentTerms: o.PaymentTerms}
	if o.TotalPrice != nil {
		v := *o.TotalPrice
		clone.TotalPrice = &v
	}
	if o.DeliveryDate != nil {
		v := *o.DeliveryDate
		clone.DeliveryDate = &v
	}
	if o.DeliveryDays != nil {
		v := *o.DeliveryDays
		clone.DeliveryDays = &v
	}
	if o.AdvancePaymentPercent != nil {
		v := *o.AdvancePaymentPercent
		clone.AdvancePaymentPercent = &v
	}
	if o.WarrantyMonths != nil {
		v := *o.WarrantyMonths
		clone.WarrantyMonths = &v
	}
	return clone
}

// Format renders the canonical subset (price, terms, delivery days) as
// vendor-style text. Parse(Format(offer)) round-trips for this subset.
func (o *Offer) Format() string {
	var parts []string
	if o.HasPrice() {
		parts = append(parts, fmt.Sprintf("$%.2f", *o.TotalPrice))
	}
	if o.HasTerms() {
		parts = append(parts, o.PaymentTerms)
	}
	if o.DeliveryDays != nil {
		parts = append(parts, fmt.Sprintf("delivery in %d days", *o.DeliveryDays))
	}
	return strings.Join(parts, ", ")
}

// AccumulatedOffer is an Offer plus completeness bookkeeping. A completed
// offer requires price and payment terms at minimum; delivery is optional.
type AccumulatedOffer struct {
	Offer            Offer       `json:"offer"`
	IsComplete       bool        `json:"is_complete"`
	ProvidedFields   []string    `json:"provided_fields"`
	MissingFields    []string    `json:"missing_fields"`
	SourceMessageIDs []shared.ID `json:"source_message_ids"`
}

// RequiredFields lists the fields an offer must carry to be complete
func RequiredFields() []string {
	return []string{FieldTotalPrice, FieldPaymentTerms}
}
