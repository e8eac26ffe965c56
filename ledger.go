package perfledger

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// LedgerEntry is an activity resolved, classified, signed and converted to
// the account base currency. Entries are rebuilt from scratch on every
// computation.
type LedgerEntry struct {
	Date      Date     `json:"date"`
	Amount    Money    `json:"amount"` // base currency, positive when value enters the account
	Kind      Kind     `json:"kind"`
	Symbol    string   `json:"symbol,omitempty"`
	Currency  string   `json:"currency,omitempty"` // trading currency of Symbol
	Quantity  Quantity `json:"quantity"`           // position change, positive when shares come in
	Synthetic bool     `json:"synthetic,omitempty"`
	Source    int      `json:"source"` // index of the activity, -1 for synthetic entries
}

// movesPosition reports whether the entry changes a holding.
func (e LedgerEntry) movesPosition() bool {
	return e.Symbol != "" && !e.Quantity.IsZero()
}

// planNeeds lists the quotes required to ingest records and value their
// positions up to asOf.
func planNeeds(records []ActivityRecord, base string, asOf Date) *marketNeeds {
	needs := newMarketNeeds()
	for _, a := range records {
		day := a.Date()
		r, ok := ResolveAmount(a)
		if !ok {
			continue
		}
		if r.Currency != "" && r.Currency != base {
			needs.currency(r.Currency, NewRange(day, day))
		}
		if a.Symbol != "" && !a.Quantity.IsZero() {
			held := NewRange(day, asOf)
			needs.symbol(a.Symbol, held)
			if a.Currency != "" && a.Currency != base {
				needs.currency(a.Currency, held)
			}
		}
	}
	return needs
}

// Ingest turns activity records into ledger entries in base currency, sorted
// by date. Records on the same day keep their input order.
//
// Activities without a resolvable amount, or whose currency cannot be
// converted on their date, are left out and reported as issues.
func Ingest(records []ActivityRecord, md *MarketData, log zerolog.Logger) ([]LedgerEntry, []Issue) {
	var entries []LedgerEntry
	var issues []Issue
	for i, a := range records {
		day := a.Date()
		subject := fmt.Sprintf("#%d %s %s", i, a.Action, a.Symbol)

		r, ok := ResolveAmount(a)
		if !ok {
			log.Warn().Int("activity", i).Str("description", a.Description).Stringer("date", day).Msg("activity amount unresolved")
			issues = append(issues, Issue{
				Kind:    IssueUnresolvedAmount,
				Date:    day,
				Subject: subject,
				Message: "no amount in record or description, activity ignored",
			})
			continue
		}

		kind := Classify(a)
		signed := signedAmount(a, r, kind)
		amount, ok := md.Convert(signed, r.Currency, day)
		if !ok {
			log.Warn().Int("activity", i).Str("currency", r.Currency).Stringer("date", day).Msg("no exchange rate")
			m := M(signed, r.Currency)
			issues = append(issues, Issue{
				Kind:    IssueMissingRate,
				Date:    day,
				Subject: r.Currency,
				Message: fmt.Sprintf("no %s rate for activity %s, activity ignored", r.Currency, subject),
				Amount:  &m,
			})
			continue
		}

		currency := a.Currency
		if currency == "" {
			currency = md.base
		}
		entries = append(entries, LedgerEntry{
			Date:     day,
			Amount:   amount,
			Kind:     kind,
			Symbol:   a.Symbol,
			Currency: currency,
			Quantity: signedQuantity(a, kind, signed),
			Source:   i,
		})
	}

	slices.SortStableFunc(entries, func(a, b LedgerEntry) int {
		return a.Date.DaysSince(b.Date)
	})
	return entries, issues
}
