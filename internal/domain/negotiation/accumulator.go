package negotiation

import (
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// Accumulate merges a newly parsed partial offer into the prior
// accumulation for a deal.
//
// Policy:
//   - A partial carrying BOTH price and terms is treated as a fresh
//     complete offer: the prior accumulation is discarded.
//   - Otherwise fields merge one by one with newer values winning, and
//     source message ids are unioned.
//
// Completeness requires price and payment terms at minimum; delivery is
// optional.
func Accumulate(prior *deal.AccumulatedOffer, partial *deal.Offer, sourceMessageID shared.ID) *deal.AccumulatedOffer {
	if partial == nil {
		partial = &deal.Offer{}
	}

	if partial.HasPrice() && partial.HasTerms() {
		fresh := &deal.AccumulatedOffer{
			Offer:            *partial.Clone(),
			SourceMessageIDs: []shared.ID{sourceMessageID},
		}
		finalize(fresh)
		return fresh
	}

	merged := &deal.AccumulatedOffer{}
	if prior != nil {
		merged.Offer = *prior.Offer.Clone()
		merged.SourceMessageIDs = append(merged.SourceMessageIDs, prior.SourceMessageIDs...)
	}

	if partial.TotalPrice != nil {
		v := *partial.TotalPrice
		merged.Offer.TotalPrice = &v
	}
	if partial.PaymentTerms != "" {
		merged.Offer.PaymentTerms = partial.PaymentTerms
	}
	if partial.DeliveryDate != nil {
		v := *partial.DeliveryDate
		merged.Offer.DeliveryDate = &v
	}
	if partial.DeliveryDays != nil {
		v := *partial.DeliveryDays
		merged.Offer.DeliveryDays = &v
	}
	if partial.AdvancePaymentPercent != nil {
		v := *partial.AdvancePaymentPercent
		merged.Offer.AdvancePaymentPercent = &v
	}
	if partial.WarrantyMonths != nil {
		v := *partial.WarrantyMonths
		merged.Offer.WarrantyMonths = &v
	}

	merged.SourceMessageIDs = appendUniqueID(merged.SourceMessageIDs, sourceMessageID)
	finalize(merged)
	return merged
}

// finalize recomputes provided/missing fields and completeness
func finalize(acc *deal.AccumulatedOffer) {
	acc.ProvidedFields = acc.Offer.ProvidedFields()
	acc.MissingFields = nil
	for _, required := range deal.RequiredFields() {
		if !contains(acc.ProvidedFields, required) {
			acc.MissingFields = append(acc.MissingFields, required)
		}
	}
	acc.IsComplete = len(acc.MissingFields) == 0
}

func appendUniqueID(ids []shared.ID, id shared.ID) []shared.ID {
	for _, existing := range ids {
		if existing.Equals(id) {
			return ids
		}
	}
	return append(ids, id)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
