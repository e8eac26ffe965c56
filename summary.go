package perfledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultTrailingMonths are the trailing windows reported by default.
var DefaultTrailingMonths = []int{1, 6, 12, 60, 120}

// Summary is the headline performance of an account.
type Summary struct {
	NetDeposits      Money                     `json:"netDeposits"`
	TotalPnL         Money                     `json:"totalPnL"`
	TotalEquity      Money                     `json:"totalEquity"`
	AnnualizedReturn Solution                  `json:"annualizedReturn"`
	Trailing         map[string]TrailingReturn `json:"trailing"`
}

// TrailingReturn is the performance over a window ending on the last day.
type TrailingReturn struct {
	From Date `json:"from"`
	// ReturnRate is the simple (Modified Dietz) return over the window, zero
	// when the capital at work is not positive.
	ReturnRate       float64  `json:"returnRate"`
	AnnualizedReturn Solution `json:"annualizedReturn"`
	PnL              Money    `json:"pnl"`
}

// windowKey names a trailing window: 1m, 6m, 1y, 5y.
func windowKey(months int) string {
	if months%12 == 0 {
		return fmt.Sprintf("%dy", months/12)
	}
	return fmt.Sprintf("%dm", months)
}

// cashFlows returns the investor side flows of points. It opens with the net
// deposits of the first point, or its equity when openWithEquity is set, and
// closes with the last equity.
func cashFlows(points []DailyPoint, openWithEquity bool) []CashFlow {
	first := points[0]
	open := first.NetDeposits
	if openWithEquity {
		open = first.Equity
	}
	flows := []CashFlow{{Date: first.Date, Amount: -open.AsFloat()}}
	for i := 1; i < len(points); i++ {
		delta := points[i].NetDeposits.Sub(points[i-1].NetDeposits)
		if !delta.IsZero() {
			flows = append(flows, CashFlow{Date: points[i].Date, Amount: -delta.AsFloat()})
		}
	}
	last := points[len(points)-1]
	return append(flows, CashFlow{Date: last.Date, Amount: last.Equity.AsFloat()})
}

// Summarize computes the summary of a series, measuring from its baseline.
func Summarize(s *Series, months []int, opt SolverOptions) Summary {
	points := s.Points[s.Start:]
	last := points[len(points)-1]
	sum := Summary{
		NetDeposits:      last.NetDeposits,
		TotalPnL:         last.TotalPnL,
		TotalEquity:      last.Equity,
		AnnualizedReturn: SolveXIRR(cashFlows(points, false), opt),
		Trailing:         map[string]TrailingReturn{},
	}
	for _, m := range months {
		from := last.Date.AddMonth(-m)
		k := from.DaysSince(points[0].Date)
		if k < 0 {
			// the history is shorter than the window.
			continue
		}
		window := points[k:]
		sum.Trailing[windowKey(m)] = TrailingReturn{
			From:             from,
			ReturnRate:       modifiedDietz(window),
			AnnualizedReturn: SolveXIRR(cashFlows(window, true), opt),
			PnL:              last.TotalPnL.Sub(window[0].TotalPnL),
		}
	}
	return sum
}

// modifiedDietz returns the P&L of the window over the capital at work,
// flows weighted by the fraction of the window they were invested.
func modifiedDietz(window []DailyPoint) float64 {
	first, last := window[0], window[len(window)-1]
	days := last.Date.DaysSince(first.Date)
	if days == 0 {
		return 0
	}
	total := decimal.NewFromInt(int64(days))
	capital := first.Equity.Decimal()
	for i := 1; i < len(window); i++ {
		delta := window[i].NetDeposits.Sub(window[i-1].NetDeposits)
		if delta.IsZero() {
			continue
		}
		weight := decimal.NewFromInt(int64(last.Date.DaysSince(window[i].Date))).Div(total)
		capital = capital.Add(delta.Decimal().Mul(weight))
	}
	if !capital.IsPositive() {
		return 0
	}
	pnl := last.TotalPnL.Sub(first.TotalPnL).Decimal()
	return pnl.Div(capital).InexactFloat64()
}
