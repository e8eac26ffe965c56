package perfledger

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ResolvedAmount is the canonical value of one activity, before any sign or
// currency conversion is applied.
type ResolvedAmount struct {
	Amount          decimal.Decimal
	Currency        string
	FromDescription bool // true when the amount was parsed out of the free-text description
}

// ResolveAmount returns the economic value of an activity.
//
// The structured net amount wins, then the gross amount. Records carrying
// neither (in-kind transfers) are resolved from their description. It returns
// false when no value can be found, the caller must then report the activity
// instead of counting it as zero.
func ResolveAmount(a ActivityRecord) (ResolvedAmount, bool) {
	if !a.NetAmount.IsZero() {
		return ResolvedAmount{Amount: a.NetAmount, Currency: a.Currency}, true
	}
	if !a.GrossAmount.IsZero() {
		return ResolvedAmount{Amount: a.GrossAmount, Currency: a.Currency}, true
	}

	amount, hint, ok := parseDescriptionAmount(a.Description)
	if !ok {
		return ResolvedAmount{}, false
	}
	currency := a.Currency
	if hint != "" {
		currency = hint
	}
	return ResolvedAmount{Amount: amount, Currency: currency, FromDescription: true}, true
}

// amountTokenRE matches a single whitespace separated token holding a decimal
// number, optionally glued to a currency code on either side (USD1200, 1200CAD).
// Thousands separators are only accepted in groups of exactly three digits.
var amountTokenRE = regexp.MustCompile(`^([A-Z]{3})?[-+]?((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?)([A-Z]{3})?$`)

// tokenTrim is the punctuation that can wrap a number in a description.
const tokenTrim = "$()[]:;,"

// parseDescriptionAmount finds the last well-formed number in a free-text
// description and the currency code written next to it, if any.
//
// The amount is always returned as a magnitude. The currency is the code glued
// to the number, the token right before it, or the first code after it.
func parseDescriptionAmount(desc string) (amount decimal.Decimal, currency string, ok bool) {
	tokens := strings.Fields(desc)
	for i := range tokens {
		tokens[i] = strings.Trim(tokens[i], tokenTrim)
		// a sentence may end right after the number.
		tokens[i] = strings.TrimSuffix(tokens[i], ".")
	}

	at := -1
	var match []string
	for i := len(tokens) - 1; i >= 0; i-- {
		if m := amountTokenRE.FindStringSubmatch(tokens[i]); m != nil {
			at, match = i, m
			break
		}
	}
	if at < 0 {
		return decimal.Decimal{}, "", false
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(match[2], ",", ""))
	if err != nil {
		return decimal.Decimal{}, "", false
	}

	switch {
	case IsCurrency(match[3]):
		currency = match[3]
	case IsCurrency(match[1]):
		currency = match[1]
	case at > 0 && IsCurrency(tokens[at-1]):
		currency = tokens[at-1]
	default:
		for _, tok := range tokens[at+1:] {
			if IsCurrency(tok) {
				currency = tok
				break
			}
		}
	}
	return amount.Abs(), currency, true
}
