package perfledger

import (
	"fmt"
	"slices"
)

// holding is the running position in one symbol.
type holding struct {
	currency string   // trading currency
	quantity Quantity // shares held
	cost     Money    // net cost in base currency: paid in, minus received back
}

// holdings tracks positions by symbol, in the order they were first seen.
type holdings struct {
	base     string
	symbols  []string
	bySymbol map[string]*holding
}

func newHoldings(base string) *holdings {
	return &holdings{base: base, bySymbol: map[string]*holding{}}
}

// apply updates positions with a ledger entry. Entries that do not move
// shares are ignored.
func (h *holdings) apply(e LedgerEntry) {
	if !e.movesPosition() {
		return
	}
	pos, ok := h.bySymbol[e.Symbol]
	if !ok {
		pos = &holding{currency: e.Currency, cost: M(0, h.base)}
		h.bySymbol[e.Symbol] = pos
		h.symbols = append(h.symbols, e.Symbol)
		slices.Sort(h.symbols)
	}
	pos.quantity = pos.quantity.Add(e.Quantity)
	switch e.Kind {
	case TradingFlow:
		// cash paid for the shares becomes their cost.
		pos.cost = pos.cost.Sub(e.Amount)
	case ExternalFlow:
		// shares transferred in bring their book value as cost.
		pos.cost = pos.cost.Add(e.Amount)
	case NonFlowGain:
	default:
		panic(fmt.Sprintf("unknown ledger kind %d", int(e.Kind)))
	}
}

// unrealized returns Σ (market value − net cost) over all positions on day.
// Closed positions contribute their realized gain. Held symbols without a
// usable quote are valued at cost and returned as approximate.
func (h *holdings) unrealized(md *MarketData, day Date) (Money, []string) {
	total := M(0, h.base)
	var approximate []string
	for _, sym := range h.symbols {
		pos := h.bySymbol[sym]
		if pos.quantity.IsZero() {
			total = total.Sub(pos.cost)
			continue
		}
		value, ok := md.Value(sym, pos.currency, pos.quantity, day)
		if !ok {
			approximate = append(approximate, sym)
			continue
		}
		total = total.Add(value.Sub(pos.cost))
	}
	return total, approximate
}
