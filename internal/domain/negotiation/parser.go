package negotiation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
)

// conversionRates normalizes currencies through USD. Rates are static;
// currency arbitrage is out of scope.
var conversionRates = map[deal.Currency]float64{
	deal.CurrencyUSD: 1.0,
	deal.CurrencyINR: 0.012,
	deal.CurrencyEUR: 1.08,
	deal.CurrencyGBP: 1.27,
	deal.CurrencyAUD: 0.66,
}

var symbolCurrencies = map[string]deal.Currency{
	"$": deal.CurrencyUSD,
	"₹": deal.CurrencyINR,
	"€": deal.CurrencyEUR,
	"£": deal.CurrencyGBP,
}

var (
	priceRe = regexp.MustCompile(`(?i)(USD|INR|EUR|GBP|AUD|[$₹€£])?\s*([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]+)?|[0-9]+(?:\.[0-9]+)?)`)
	netRe   = regexp.MustCompile(`(?i)\bnet\s*[- ]?\s*(7|15|30|45|60|75|90|120)\b`)
	codRe   = regexp.MustCompile(`(?i)\b(?:cod|cash on delivery|on delivery|payment on delivery)\b`)
	advRe   = regexp.MustCompile(`(?i)\b(?:advance(?:\s+(?:payment\s+)?of)?\s+([0-9]{1,2})\s*%|([0-9]{1,2})\s*%\s+(?:advance|upfront))`)
	warrRe  = regexp.MustCompile(`(?i)\b(?:([0-9]{1,3})\s*[- ]?months?\s+warranty|warranty\s+of\s+([0-9]{1,3})\s*months?)\b`)
	relRe   = regexp.MustCompile(`(?i)\b(?:in|within|delivery in|deliver(?:y|ed)?\s+in)\s+([0-9]{1,3})\s+(day|days|week|weeks)\b`)
)

// dateLayouts are the absolute date formats the parser recognizes
var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"01/02/2006",
}

var dateRe = regexp.MustCompile(`(?i)\b(\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4}|(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\s+\d{1,2},?\s+\d{4}|\d{1,2}\s+(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\s+\d{4})\b`)

// OfferParser extracts a partial structured offer from free-form vendor
// text. Unparseable fields remain absent; the parser never fabricates
// values, and identical input always yields an identical offer.
type OfferParser struct {
	currency deal.Currency // requisition currency prices are normalized to
}

// NewOfferParser creates a parser normalizing prices to the given
// requisition currency. An empty currency defaults to USD.
func NewOfferParser(currency deal.Currency) *OfferParser {
	if currency == "" {
		currency = deal.CurrencyUSD
	}
	return &OfferParser{currency: currency}
}

// Parse extracts price, payment terms, delivery, advance percent and
// warranty from text. Any of them may be absent in the result.
func (p *OfferParser) Parse(text string) *deal.Offer {
	offer := &deal.Offer{}

	remaining := p.parseTerms(text, offer)
	remaining = p.parseDelivery(remaining, offer)
	remaining = p.parseWarranty(remaining, offer)
	p.parsePrice(remaining, offer)

	return offer
}

// parseTerms recognizes "Net N", COD/on-delivery (Net 0) and advance
// percentages. Matched spans are blanked so their digits are not later
// mistaken for prices.
func (p *OfferParser) parseTerms(text string, offer *deal.Offer) string {
	if m := netRe.FindStringSubmatchIndex(text); m != nil {
		offer.PaymentTerms = "Net " + text[m[2]:m[3]]
		text = blank(text, m[0], m[1])
	} else if m := codRe.FindStringIndex(text); m != nil {
		offer.PaymentTerms = "Net 0"
		text = blank(text, m[0], m[1])
	}
	if m := advRe.FindStringSubmatchIndex(text); m != nil {
		digits := submatch(text, m, 1)
		if digits == "" {
			digits = submatch(text, m, 2)
		}
		if pct, err := strconv.ParseFloat(digits, 64); err == nil {
			offer.AdvancePaymentPercent = &pct
		}
		text = blank(text, m[0], m[1])
	}
	return text
}

// parseDelivery recognizes absolute dates and relative "in N days/weeks"
func (p *OfferParser) parseDelivery(text string, offer *deal.Offer) string {
	if m := relRe.FindStringSubmatchIndex(text); m != nil {
		n, err := strconv.Atoi(submatch(text, m, 1))
		if err == nil && n >= 0 {
			unit := strings.ToLower(submatch(text, m, 2))
			if strings.HasPrefix(unit, "week") {
				n *= 7
			}
			offer.DeliveryDays = &n
		}
		return blank(text, m[0], m[1])
	}
	if m := dateRe.FindStringSubmatchIndex(text); m != nil {
		raw := submatch(text, m, 1)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, normalizeDate(raw, layout)); err == nil {
				offer.DeliveryDate = &t
				break
			}
		}
		return blank(text, m[0], m[1])
	}
	return text
}

func (p *OfferParser) parseWarranty(text string, offer *deal.Offer) string {
	if m := warrRe.FindStringSubmatchIndex(text); m != nil {
		digits := submatch(text, m, 1)
		if digits == "" {
			digits = submatch(text, m, 2)
		}
		if months, err := strconv.Atoi(digits); err == nil {
			offer.WarrantyMonths = &months
		}
		return blank(text, m[0], m[1])
	}
	return text
}

// parsePrice picks the largest plausible monetary value left in the
// text and converts it into the requisition currency when the stated
// currency differs.
func (p *OfferParser) parsePrice(text string, offer *deal.Offer) {
	matches := priceRe.FindAllStringSubmatch(text, -1)
	best := -1.0
	var bestCurrency deal.Currency
	for _, m := range matches {
		raw := strings.ReplaceAll(m[2], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value <= 0 {
			continue
		}
		currency := p.currency
		if m[1] != "" {
			currency = resolveCurrency(m[1])
		}
		// Bare small integers ("5", "30") are almost never prices;
		// require either a currency marker or a plausible magnitude.
		if m[1] == "" && value < 100 {
			continue
		}
		if value > best {
			best = value
			bestCurrency = currency
		}
	}
	if best < 0 {
		return
	}
	converted := convertCurrency(best, bestCurrency, p.currency)
	offer.TotalPrice = &converted
}

func resolveCurrency(marker string) deal.Currency {
	if c, ok := symbolCurrencies[marker]; ok {
		return c
	}
	return deal.Currency(strings.ToUpper(marker))
}

func convertCurrency(value float64, from, to deal.Currency) float64 {
	if from == to {
		return value
	}
	fromRate, okFrom := conversionRates[from]
	toRate, okTo := conversionRates[to]
	if !okFrom || !okTo {
		return value
	}
	return value * fromRate / toRate
}

// blank replaces a matched span with spaces, preserving offsets
func blank(text string, start, end int) string {
	return text[:start] + strings.Repeat(" ", end-start) + text[end:]
}

func submatch(text string, idx []int, n int) string {
	if 2*n+1 >= len(idx) || idx[2*n] < 0 {
		return ""
	}
	return text[idx[2*n]:idx[2*n+1]]
}

// normalizeDate smooths minor format differences (trailing comma
// variants) before layout parsing
func normalizeDate(raw, layout string) string {
	if strings.Contains(layout, ",") && !strings.Contains(raw, ",") {
		// "January 2 2006" -> "January 2, 2006"
		parts := strings.Fields(raw)
		if len(parts) == 3 {
			return parts[0] + " " + parts[1] + ", " + parts[2]
		}
	}
	if !strings.Contains(layout, ",") {
		return strings.ReplaceAll(raw, ",", "")
	}
	return raw
}
