package perfledger

import "time"

// AccountContext identifies an account and the dates its performance is
// measured between.
type AccountContext struct {
	AccountID    string `json:"accountId" yaml:"id"`
	BaseCurrency string `json:"baseCurrency" yaml:"currency"`
	// CAGRStartDate, when after EarliestFundingDate, re-bases performance:
	// the account is treated as funded on that day with its equity.
	CAGRStartDate       Date      `json:"cagrStartDate" yaml:"cagr_start"`
	EarliestFundingDate Date      `json:"earliestFundingDate" yaml:"earliest_funding"`
	AsOf                time.Time `json:"asOf" yaml:"as_of"`
}

// Baseline is the point performance is measured from.
type Baseline struct {
	Date     Date  `json:"date"`
	Equity   Money `json:"equity"`
	Anchored bool  `json:"anchored"`
}

// Anchor decides the baseline of an account from its unanchored estimates.
//
// By default the baseline is the first estimated day with zero equity. When a
// CAGR start date lies after the earliest funding date, the baseline moves to
// that day and takes the equity estimated at its end, as if the whole
// account had been deposited then. Without any ledger entry before the
// anchor there is nothing to re-base and the default is kept.
func Anchor(ctx AccountContext, est []estimate) Baseline {
	def := Baseline{Date: est[0].date, Equity: M(0, ctx.BaseCurrency)}
	anchor := ctx.CAGRStartDate
	if anchor.IsZero() || !anchor.After(ctx.EarliestFundingDate) || !anchor.After(est[0].date) {
		return def
	}
	for i, e := range est {
		if e.date != anchor {
			continue
		}
		if est[i-1].entries == 0 {
			return def
		}
		return Baseline{Date: anchor, Equity: e.equity, Anchored: true}
	}
	return def
}
