package renderer

import (
	"slices"
	"strings"

	"github.com/etnz/perfledger"
)

// Report is the printable view of a perfledger.Result. Every amount is
// already formatted.
type Report struct {
	Account        string
	Currency       string
	AsOf           string
	Baseline       string
	Anchored       bool
	NetDeposits    string
	TotalPnL       string
	TotalEquity    string
	Annualized     string
	Reconciliation string // empty when the reconstruction matched the balance

	Trailing    []TrailingRow
	Adjustments []AdjustmentRow
	Issues      []IssueRow
}

type TrailingRow struct {
	Window     string
	From       string
	Return     string
	Annualized string
	PnL        string
}

type AdjustmentRow struct {
	Date   string
	Amount string
}

type IssueRow struct {
	Date    string
	Kind    string
	Subject string
	Message string
}

// NewReport formats a result for rendering.
func NewReport(res *perfledger.Result) *Report {
	r := &Report{
		Account:     res.Account,
		Currency:    res.Currency,
		AsOf:        res.AsOf.String(),
		Baseline:    res.Baseline.Date.String(),
		Anchored:    res.Baseline.Anchored,
		NetDeposits: res.Summary.NetDeposits.String(),
		TotalPnL:    res.Summary.TotalPnL.SignedString(),
		TotalEquity: res.Summary.TotalEquity.String(),
		Annualized:  res.Summary.AnnualizedReturn.String(),
	}
	if !res.Reconciliation.IsZero() {
		r.Reconciliation = res.Reconciliation.SignedString()
	}

	// shortest window first, that is the latest start.
	keys := make([]string, 0, len(res.Summary.Trailing))
	for k := range res.Summary.Trailing {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		fa, fb := res.Summary.Trailing[a].From, res.Summary.Trailing[b].From
		switch {
		case fa.After(fb):
			return -1
		case fa.Before(fb):
			return 1
		}
		return strings.Compare(a, b)
	})
	for _, k := range keys {
		t := res.Summary.Trailing[k]
		r.Trailing = append(r.Trailing, TrailingRow{
			Window:     k,
			From:       t.From.String(),
			Return:     perfledger.AsPercent(t.ReturnRate).SignedString(),
			Annualized: t.AnnualizedReturn.String(),
			PnL:        t.PnL.SignedString(),
		})
	}

	for _, a := range res.Adjustments {
		r.Adjustments = append(r.Adjustments, AdjustmentRow{Date: a.Date.String(), Amount: a.Amount.SignedString()})
	}
	for _, i := range res.Issues {
		r.Issues = append(r.Issues, IssueRow{
			Date:    i.Date.String(),
			Kind:    string(i.Kind),
			Subject: i.Subject,
			Message: escapeCell(i.Message),
		})
	}
	return r
}

// History is the printable daily history of an account.
type History struct {
	Account        string
	Points         []PointRow
	HasApproximate bool
}

type PointRow struct {
	Date        string
	NetDeposits string
	Equity      string
	PnL         string
	Approximate bool
}

// NewHistory formats the points of a result for rendering.
func NewHistory(res *perfledger.Result, opts SeriesOptions) *History {
	h := &History{Account: res.Account}
	for i, p := range res.Points {
		if opts.Monthly && i < len(res.Points)-1 && res.Points[i+1].Date.Month() == p.Date.Month() {
			continue
		}
		h.Points = append(h.Points, PointRow{
			Date:        p.Date.String(),
			NetDeposits: p.NetDeposits.String(),
			Equity:      p.Equity.String(),
			PnL:         p.TotalPnL.SignedString(),
			Approximate: p.Approximate,
		})
		h.HasApproximate = h.HasApproximate || p.Approximate
	}
	return h
}

// escapeCell keeps free text from breaking a table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
