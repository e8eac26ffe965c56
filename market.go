package perfledger

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Provider is the source of market data the engine values positions and
// converts currencies with.
//
// A day missing from a returned History is unavailable. Implementations may
// return an empty History or an error, both mean the whole key is unavailable.
type Provider interface {
	// ExchangeRates returns the value of one unit of 'from' in 'to' for every
	// day of r where it is known.
	ExchangeRates(ctx context.Context, from, to string, r Range) (*History, error)
	// ClosingPrices returns the closing price of symbol, in its trading
	// currency, for every day of r where it is known.
	ClosingPrices(ctx context.Context, symbol string, r Range) (*History, error)
}

// DefaultMaxQuoteAge is how many days a quote stays valid, enough to cover
// week-ends and most holidays.
const DefaultMaxQuoteAge = 7

// maxPrefetch bounds concurrent provider calls for one computation.
const maxPrefetch = 8

// marketNeeds lists what a computation must look up, and for which days.
type marketNeeds struct {
	currencies map[string]Range
	symbols    map[string]Range
}

func newMarketNeeds() *marketNeeds {
	return &marketNeeds{currencies: map[string]Range{}, symbols: map[string]Range{}}
}

func (n *marketNeeds) currency(code string, r Range) {
	n.currencies[code] = n.currencies[code].Union(r)
}

func (n *marketNeeds) symbol(symbol string, r Range) {
	n.symbols[symbol] = n.symbols[symbol].Union(r)
}

// MarketData is the read-only view of the market a single computation runs
// on. It is filled once, up front, and never calls the provider again.
type MarketData struct {
	base   string
	maxAge int
	rates  map[string]*History // value of one unit in base currency
	prices map[string]*History // closing price in trading currency
}

// NewMarketData returns a MarketData with no quotes. Only the base currency
// can be converted.
func NewMarketData(base string, maxAge int) *MarketData {
	if maxAge <= 0 {
		maxAge = DefaultMaxQuoteAge
	}
	return &MarketData{base: base, maxAge: maxAge, rates: map[string]*History{}, prices: map[string]*History{}}
}

// fetch is one unique provider lookup.
type fetch struct {
	key   string
	price bool
	r     Range
	h     *History
}

// Prefetch loads every quote listed in needs, concurrently, one provider call
// per unique key and range.
//
// A failed lookup is logged and leaves the key unavailable. Only the context
// being done aborts the prefetch.
func Prefetch(ctx context.Context, p Provider, base string, maxAge int, needs *marketNeeds, log zerolog.Logger) (*MarketData, error) {
	md := NewMarketData(base, maxAge)
	if p == nil {
		return md, nil
	}

	var fetches []*fetch
	for cur, r := range needs.currencies {
		if cur == base {
			continue
		}
		fetches = append(fetches, &fetch{key: cur, r: md.lookback(r)})
	}
	for sym, r := range needs.symbols {
		fetches = append(fetches, &fetch{key: sym, price: true, r: md.lookback(r)})
	}
	// deterministic call order makes provider logs reproducible.
	sort.Slice(fetches, func(i, j int) bool {
		if fetches[i].price != fetches[j].price {
			return !fetches[i].price
		}
		return fetches[i].key < fetches[j].key
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPrefetch)
	for _, f := range fetches {
		g.Go(func() error {
			var err error
			if f.price {
				f.h, err = p.ClosingPrices(gctx, f.key, f.r)
			} else {
				f.h, err = exchangeRates(gctx, p, f.key, base, f.r)
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
					return err
				}
				log.Warn().Err(err).Str("key", f.key).Stringer("range", f.r).Msg("market data unavailable")
				f.h = nil
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, f := range fetches {
		if f.price {
			md.prices[f.key] = f.h
		} else {
			md.rates[f.key] = f.h
		}
	}
	return md, nil
}

// exchangeRates returns from→to rates, using the inverse pair when the
// direct one is not quoted.
func exchangeRates(ctx context.Context, p Provider, from, to string, r Range) (*History, error) {
	direct, err := p.ExchangeRates(ctx, from, to, r)
	if err == nil && direct.Len() > 0 {
		return direct, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	inverse, ierr := p.ExchangeRates(ctx, to, from, r)
	if ierr != nil {
		if err != nil {
			return nil, err
		}
		return nil, ierr
	}
	return inverse.Inverse(), nil
}

// lookback extends r backward so that the first days can use an older quote.
func (m *MarketData) lookback(r Range) Range {
	return Range{From: r.From.Add(-m.maxAge), To: r.To}
}

// asOf returns the last quote on or before day, unless it is too old.
func (m *MarketData) asOf(h *History, day Date) (decimal.Decimal, bool) {
	v, on, ok := h.ValueAsOf(day)
	if !ok || day.DaysSince(on) > m.maxAge {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(v), true
}

// Rate returns the value of one unit of currency in base currency on day.
func (m *MarketData) Rate(currency string, day Date) (decimal.Decimal, bool) {
	if currency == m.base || currency == "" {
		return decimal.NewFromInt(1), true
	}
	return m.asOf(m.rates[currency], day)
}

// Convert expresses amount, in currency, in base currency on day.
func (m *MarketData) Convert(amount decimal.Decimal, currency string, day Date) (Money, bool) {
	rate, ok := m.Rate(currency, day)
	if !ok {
		return Money{}, false
	}
	return M(amount, currency).Convert(rate, m.base), true
}

// Close returns the closing price of symbol on day, in its trading currency.
func (m *MarketData) Close(symbol string, day Date) (decimal.Decimal, bool) {
	return m.asOf(m.prices[symbol], day)
}

// Value returns the market value in base currency of q shares of symbol
// traded in currency.
func (m *MarketData) Value(symbol, currency string, q Quantity, day Date) (Money, bool) {
	price, ok := m.Close(symbol, day)
	if !ok {
		return Money{}, false
	}
	return m.Convert(price.Mul(q.value), currency, day)
}
