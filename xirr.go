package perfledger

import (
	"encoding/json"
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Reasons a return rate cannot be determined.
var (
	ErrTooFewFlows    = errors.New("fewer than two cash flows")
	ErrSameSign       = errors.New("cash flows all have the same sign")
	ErrFlatDerivative = errors.New("npv derivative vanished")
	ErrNoConvergence  = errors.New("solver did not converge")
	ErrTotalLoss      = errors.New("rate at total loss")
	ErrResidual       = errors.New("npv residual too large")
)

// CashFlow is an amount exchanged with the account, from the investor side:
// negative when money goes in, positive when it comes out.
type CashFlow struct {
	Date   Date
	Amount float64
}

// SolverOptions tunes the Newton-Raphson iteration.
type SolverOptions struct {
	Guess         float64 // initial rate
	MaxIterations int
	Tolerance     float64 // on the rate step
	MinDerivative float64
	MaxResidual   float64 // on the NPV of normalized flows
	MinRate       float64 // at or below, the rate is a total loss
}

func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Guess:         0.10,
		MaxIterations: 100,
		Tolerance:     1e-7,
		MinDerivative: 1e-10,
		MaxResidual:   1e-4,
		MinRate:       -0.999999,
	}
}

// Solution is an annualized rate, or the reason it could not be found.
type Solution struct {
	Rate float64
	Err  error
}

func Undetermined(err error) Solution { return Solution{Err: err} }

// Determined reports whether the rate converged.
func (s Solution) Determined() bool { return s.Err == nil }

// Percent returns the rate as a Percent.
func (s Solution) Percent() Percent { return AsPercent(s.Rate) }

func (s Solution) String() string {
	if !s.Determined() {
		return "n/a"
	}
	return s.Percent().SignedString()
}

func (s Solution) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	if s.Determined() {
		w.Append("rate", s.Rate)
	} else {
		w.Append("undetermined", s.Err.Error())
	}
	return w.MarshalJSON()
}

var _ json.Marshaler = Solution{}

// SolveXIRR finds the annual rate r that zeroes the net present value
//
//	NPV(r) = Σ f_i / (1+r)^t_i
//
// where t_i is the time in years of 365 days since the earliest flow.
func SolveXIRR(flows []CashFlow, opt SolverOptions) Solution {
	if len(flows) < 2 {
		return Undetermined(ErrTooFewFlows)
	}

	first := slices.MinFunc(flows, func(a, b CashFlow) int { return a.Date.DaysSince(b.Date) }).Date
	amounts := make([]float64, len(flows))
	times := make([]float64, len(flows))
	var positive, negative bool
	for i, f := range flows {
		amounts[i] = f.Amount
		times[i] = f.Date.YearsSince(first)
		positive = positive || f.Amount > 0
		negative = negative || f.Amount < 0
	}
	if !positive || !negative {
		return Undetermined(ErrSameSign)
	}
	// normalize so the residual does not depend on the account size.
	floats.Scale(1/math.Max(floats.Max(amounts), -floats.Min(amounts)), amounts)

	n := newNPV(amounts, times)
	r := opt.Guess
	converged := false
	for range opt.MaxIterations {
		value, derivative := n.at(r)
		if math.Abs(derivative) < opt.MinDerivative {
			return Undetermined(ErrFlatDerivative)
		}
		next := r - value/derivative
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return Undetermined(ErrNoConvergence)
		}
		if next <= -1 {
			// (1+r)^t is undefined below -100%, step half way instead.
			next = (r - 1) / 2
		}
		step := math.Abs(next - r)
		r = next
		if step < opt.Tolerance {
			converged = true
			break
		}
	}
	switch {
	case !converged:
		return Undetermined(ErrNoConvergence)
	case r <= opt.MinRate:
		return Undetermined(ErrTotalLoss)
	}
	if value, _ := n.at(r); math.Abs(value) > opt.MaxResidual {
		return Undetermined(ErrResidual)
	}
	return Solution{Rate: r}
}

// npv evaluates the net present value of fixed flows and its derivative.
type npv struct {
	amounts, times []float64
	discount, slope []float64
}

func newNPV(amounts, times []float64) *npv {
	return &npv{
		amounts:  amounts,
		times:    times,
		discount: make([]float64, len(amounts)),
		slope:    make([]float64, len(amounts)),
	}
}

func (n *npv) at(r float64) (value, derivative float64) {
	for i, t := range n.times {
		n.discount[i] = math.Pow(1+r, -t)
		n.slope[i] = -t * n.discount[i] / (1 + r)
	}
	return floats.Dot(n.amounts, n.discount), floats.Dot(n.amounts, n.slope)
}

// NPV returns the net present value of flows at rate r.
func NPV(flows []CashFlow, r float64) float64 {
	if len(flows) == 0 {
		return 0
	}
	first := slices.MinFunc(flows, func(a, b CashFlow) int { return a.Date.DaysSince(b.Date) }).Date
	amounts := make([]float64, len(flows))
	times := make([]float64, len(flows))
	for i, f := range flows {
		amounts[i] = f.Amount
		times[i] = f.Date.YearsSince(first)
	}
	value, _ := newNPV(amounts, times).at(r)
	return value
}
