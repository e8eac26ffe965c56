package perfledger

import (
	"fmt"
	"sort"
)

// DailyPoint is the state of an account at the end of one calendar day.
// TotalPnL is always exactly Equity − NetDeposits.
type DailyPoint struct {
	Date        Date  `json:"date"`
	NetDeposits Money `json:"netDeposits"`
	Equity      Money `json:"equity"`
	TotalPnL    Money `json:"totalPnL"`
	Approximate bool  `json:"approximate,omitempty"`
}

func newPoint(on Date, netDeposits, equity Money, approximate bool) DailyPoint {
	return DailyPoint{
		Date:        on,
		NetDeposits: netDeposits,
		Equity:      equity,
		TotalPnL:    equity.Sub(netDeposits),
		Approximate: approximate,
	}
}

// Series is the contiguous daily history of an account.
type Series struct {
	Currency string
	Points   []DailyPoint
	// Start is the index of the baseline point. Points before it are only
	// there to draw the equity curve and carry no P&L.
	Start int

	losses      []Money    // recorded non-flow losses, aligned with Points
	approximate [][]string // symbols valued at cost, aligned with Points
}

// Last returns the last point of the series.
func (s *Series) Last() DailyPoint { return s.Points[len(s.Points)-1] }

// estimate is the reconstructed, unanchored state at the end of one day.
type estimate struct {
	date         Date
	netDeposits  Money // cumulative external flows
	gains        Money // cumulative non-flow gains
	positions    Money // Σ market value − net cost
	equity       Money
	recordedLoss Money // magnitude of the day's negative non-flow gains
	approximate  []string
	entries      int // ledger entries dated on or before this day
}

// reconstruct walks every day of r, applying ledger entries (sorted by date)
// and marking positions to market. Entries before r are applied on its first
// day.
func reconstruct(entries []LedgerEntry, md *MarketData, base string, r Range) []estimate {
	pos := newHoldings(base)
	deposits, gains := M(0, base), M(0, base)

	est := make([]estimate, 0, r.Len())
	next := 0
	for day := range r.Days() {
		loss := M(0, base)
		for ; next < len(entries) && !entries[next].Date.After(day); next++ {
			e := entries[next]
			switch e.Kind {
			case ExternalFlow:
				deposits = deposits.Add(e.Amount)
			case TradingFlow:
			case NonFlowGain:
				gains = gains.Add(e.Amount)
				if e.Amount.IsNegative() {
					loss = loss.Sub(e.Amount)
				}
			default:
				panic(fmt.Sprintf("unknown ledger kind %d", int(e.Kind)))
			}
			pos.apply(e)
		}
		positions, approximate := pos.unrealized(md, day)
		est = append(est, estimate{
			date:         day,
			netDeposits:  deposits,
			gains:        gains,
			positions:    positions,
			equity:       deposits.Add(gains).Add(positions),
			recordedLoss: loss,
			approximate:  approximate,
			entries:      next,
		})
	}
	return est
}

// buildSeries turns the estimates into daily points measured from baseline,
// and pins the last day to equityNow. It returns the additive correction
// applied to the last day.
func buildSeries(est []estimate, baseline Baseline, equityNow Money, includePreAnchor bool) (*Series, Money) {
	base := equityNow.Currency()
	k := 0
	for k < len(est) && est[k].date.Before(baseline.Date) {
		k++
	}

	s := &Series{Currency: base}
	first := k
	if includePreAnchor {
		first = 0
		s.Start = k
	}
	last := len(est) - 1
	plug := equityNow.Sub(est[last].equity)

	for i := first; i <= last; i++ {
		e := est[i]
		equity := e.equity
		if i == last {
			equity = equityNow
		}
		approximate := len(e.approximate) > 0

		var netDeposits Money
		switch {
		case i < k:
			// before the baseline, everything counts as contributed capital.
			netDeposits = equity
		case baseline.Anchored:
			netDeposits = baseline.Equity.Add(e.netDeposits).Sub(est[k].netDeposits)
		default:
			netDeposits = e.netDeposits
		}
		s.Points = append(s.Points, newPoint(e.date, netDeposits, equity, approximate))
		s.losses = append(s.losses, e.recordedLoss)
		s.approximate = append(s.approximate, e.approximate)
	}
	return s, plug
}

// approximationIssues reports, per symbol, the days it was valued at cost.
func approximationIssues(est []estimate, from Date) []Issue {
	type run struct {
		first Date
		days  int
	}
	runs := map[string]*run{}
	for _, e := range est {
		if e.date.Before(from) {
			continue
		}
		for _, sym := range e.approximate {
			if r, ok := runs[sym]; ok {
				r.days++
				continue
			}
			runs[sym] = &run{first: e.date, days: 1}
		}
	}
	symbols := make([]string, 0, len(runs))
	for sym := range runs {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	issues := make([]Issue, 0, len(symbols))
	for _, sym := range symbols {
		r := runs[sym]
		issues = append(issues, Issue{
			Kind:    IssueApproximateValuation,
			Date:    r.first,
			Subject: sym,
			Message: fmt.Sprintf("no recent price, valued at cost on %d day(s)", r.days),
		})
	}
	return issues
}
