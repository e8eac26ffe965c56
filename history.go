package perfledger

import (
	"iter"
	"slices"
)

// History stores a chronological series of quotes (closing prices or exchange
// rates), at most one per day. It is always sorted.
type History struct {
	days   []Date
	values []float64
}

// NewHistory returns an empty History.
func NewHistory() *History { return new(History) }

// Len returns the number of quotes in the history.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.days)
}

// index returns where day is, or would be inserted.
func (h *History) index(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.days, day, func(d, t Date) int {
		switch {
		case d.After(t):
			return 1
		case d.Before(t):
			return -1
		}
		return 0
	})
}

// Append adds a quote to the history. An existing quote at that date is
// replaced, the last one wins.
func (h *History) Append(on Date, v float64) *History {
	i, found := h.index(on)
	if found {
		h.values[i] = v
		return h
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, v)
	return h
}

// Values returns an iterator over all quotes, in chronological order.
func (h *History) Values() iter.Seq2[Date, float64] {
	return func(yield func(Date, float64) bool) {
		if h == nil {
			return
		}
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// Get returns the quote at 'day' and true or zero and false.
func (h *History) Get(day Date) (float64, bool) {
	if h == nil {
		return 0, false
	}
	if i, found := h.index(day); found {
		return h.values[i], true
	}
	return 0, false
}

// ValueAsOf returns the most recent quote on or before day, and the day it
// was quoted.
func (h *History) ValueAsOf(day Date) (float64, Date, bool) {
	if h == nil {
		return 0, Date{}, false
	}
	i, found := h.index(day)
	if found {
		return h.values[i], h.days[i], true
	}
	if i == 0 {
		return 0, Date{}, false
	}
	return h.values[i-1], h.days[i-1], true
}

// Inverse returns a new history holding 1/v for every non zero quote.
func (h *History) Inverse() *History {
	inv := NewHistory()
	for on, v := range h.Values() {
		if v != 0 {
			inv.days = append(inv.days, on)
			inv.values = append(inv.values, 1/v)
		}
	}
	return inv
}
