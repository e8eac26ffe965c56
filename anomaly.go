package perfledger

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// AnomalyOptions controls the detection of unexplained drops.
type AnomalyOptions struct {
	Disabled bool `yaml:"disabled"`
	// MinAmount is the smallest drop, in base currency units, ever compensated.
	MinAmount float64 `yaml:"min_amount"`
	// MinRatio is the smallest drop compensated, relative to the previous
	// day equity.
	MinRatio float64 `yaml:"min_ratio"`
}

// DefaultAnomalyOptions returns the default thresholds: 100 units or 20% of
// the previous equity, whichever is larger.
func DefaultAnomalyOptions() AnomalyOptions {
	return AnomalyOptions{MinAmount: 100, MinRatio: 0.20}
}

// Adjustment is a synthetic withdrawal booked to explain a drop in equity
// that no recorded activity accounts for.
type Adjustment struct {
	Date   Date  `json:"date"`
	Amount Money `json:"amount"`
}

// threshold returns the smallest drop compensated after a day with equity.
func (o AnomalyOptions) threshold(equity Money) decimal.Decimal {
	t := decimal.NewFromFloat(o.MinAmount)
	if equity.IsPositive() {
		if r := equity.Decimal().Mul(decimal.NewFromFloat(o.MinRatio)); r.GreaterThan(t) {
			t = r
		}
	}
	return t
}

// Compensate detects days where P&L drops without a recorded loss to explain
// it, typically a withdrawal missing from the activity feed, and books a
// synthetic withdrawal for the unexplained part from that day on. Equity is
// never changed: net deposits decrease and P&L increases by the same amount.
//
// A day whose set of symbols valued at cost differs from the previous day is
// never compensated: its move comes from the valuation, not from the feed.
//
// Detection runs once over the uncompensated P&L, so computing again on the
// same input gives the same adjustments.
func Compensate(s *Series, opt AnomalyOptions) ([]Adjustment, []Issue) {
	if opt.Disabled || len(s.Points) < 2 {
		return nil, nil
	}

	var adjustments []Adjustment
	var issues []Issue
	shift := make([]Money, len(s.Points))
	total := M(0, s.Currency)
	for i := range s.Points {
		if i > s.Start && slices.Equal(s.approximate[i-1], s.approximate[i]) {
			prev, cur := s.Points[i-1], s.Points[i]
			drop := prev.TotalPnL.Sub(cur.TotalPnL)
			unexplained := drop.Sub(s.losses[i])
			if unexplained.IsPositive() && unexplained.Decimal().GreaterThanOrEqual(opt.threshold(prev.Equity)) {
				total = total.Add(unexplained)
				adjustments = append(adjustments, Adjustment{Date: cur.Date, Amount: unexplained.Neg()})
				amount := unexplained.Neg()
				issues = append(issues, Issue{
					Kind:    IssueAnomalyCompensated,
					Date:    cur.Date,
					Subject: s.Currency,
					Message: fmt.Sprintf("unexplained drop of %s booked as a withdrawal", unexplained),
					Amount:  &amount,
				})
			}
		}
		shift[i] = total
	}

	for i := range s.Points {
		if shift[i].IsZero() {
			continue
		}
		p := s.Points[i]
		s.Points[i] = newPoint(p.Date, p.NetDeposits.Sub(shift[i]), p.Equity, p.Approximate)
	}
	return adjustments, issues
}
