package perfledger

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// CAD is a helper for test to create canadian dollars from const
func CAD(v float64) Money { return M(v, "CAD") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// jan returns the nth day of January 2024.
func jan(n int) Date { return NewDate(2024, time.January, n) }

// janEOD returns the end of the nth day of January 2024.
func janEOD(n int) time.Time { return time.Date(2024, time.January, n, 17, 0, 0, 0, time.UTC) }

// fakeProvider serves fixed histories keyed by "FROMTO" pairs and symbols.
type fakeProvider struct {
	rates  map[string]*History
	prices map[string]*History
	fail   map[string]bool // keys whose lookup returns an error
	calls  atomic.Int32
}

var errFake = errors.New("fake provider failure")

func (p *fakeProvider) ExchangeRates(ctx context.Context, from, to string, r Range) (*History, error) {
	p.calls.Add(1)
	if p.fail[from+to] {
		return nil, errFake
	}
	return p.rates[from+to], nil
}

func (p *fakeProvider) ClosingPrices(ctx context.Context, symbol string, r Range) (*History, error) {
	p.calls.Add(1)
	if p.fail[symbol] {
		return nil, errFake
	}
	return p.prices[symbol], nil
}

func deposit(on Date, amount string) ActivityRecord {
	return ActivityRecord{TradeDate: on, Type: TypeDeposits, Action: "DEP", NetAmount: dec(amount), Currency: "CAD", Description: "DEPOSIT"}
}

func withdrawal(on Date, amount string) ActivityRecord {
	return ActivityRecord{TradeDate: on, Type: TypeWithdrawals, Action: "WDR", NetAmount: dec(amount), Currency: "CAD", Description: "WITHDRAWAL"}
}

func interest(on Date, amount string) ActivityRecord {
	return ActivityRecord{TradeDate: on, Type: TypeInterest, NetAmount: dec(amount), Currency: "CAD", Description: "INTEREST"}
}

func fee(on Date, amount string) ActivityRecord {
	return ActivityRecord{TradeDate: on, Type: TypeFeesAndRebates, Action: "FCH", NetAmount: dec(amount), Currency: "CAD", Description: "ACCOUNT FEE"}
}

func buy(on Date, symbol, quantity, net, currency string) ActivityRecord {
	return ActivityRecord{TradeDate: on, Type: TypeTrades, Action: "Buy", Symbol: symbol, Quantity: dec(quantity), NetAmount: dec(net), Currency: currency}
}

func account(id string, asOfDay int) AccountContext {
	return AccountContext{AccountID: id, BaseCurrency: "CAD", EarliestFundingDate: jan(1), AsOf: janEOD(asOfDay)}
}

func balance(amount string) BalanceSnapshot {
	return BalanceSnapshot{TotalEquity: dec(amount), Currency: "CAD"}
}
