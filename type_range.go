package perfledger

import (
	"iter"
)

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return (!date.Before(r.From) && !date.After(r.To)) }

// Len returns the number of days in the range.
func (r Range) Len() int { return r.To.DaysSince(r.From) + 1 }

// Days returns an iterator that yields each date within the range, inclusive.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Union returns the smallest range containing both r and x.
// The zero Range is neutral.
func (r Range) Union(x Range) Range {
	if r == (Range{}) {
		return x
	}
	if x == (Range{}) {
		return r
	}
	from, to := r.From, r.To
	if x.From.Before(from) {
		from = x.From
	}
	if x.To.After(to) {
		to = x.To
	}
	return Range{From: from, To: to}
}

func (r Range) String() string { return r.From.String() + ".." + r.To.String() }
