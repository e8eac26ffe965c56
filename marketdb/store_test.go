package marketdb

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/etnz/perfledger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const market = `{"on":"2024-01-02","USDCAD":1.34,"XEQT":28.1}
{"on":"2024-01-03","XEQT":28.4}
{"on":"2024-01-05","USDCAD":1.35,"XEQT":28.9}
`

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_Import(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n, err := s.Import(ctx, "market.jsonl", strings.NewReader(market))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	h, err := s.ClosingPrices(ctx, "XEQT", perfledger.NewRange(perfledger.NewDate(2024, 1, 3), perfledger.NewDate(2024, 1, 31)))
	require.NoError(t, err)
	assert.Equal(t, 2, h.Len())
	v, on, ok := h.ValueAsOf(perfledger.NewDate(2024, 1, 4))
	require.True(t, ok)
	assert.Equal(t, 28.4, v)
	assert.Equal(t, perfledger.NewDate(2024, 1, 3), on)

	rates, err := s.ExchangeRates(ctx, "USD", "CAD", perfledger.NewRange(perfledger.NewDate(2024, 1, 1), perfledger.NewDate(2024, 1, 31)))
	require.NoError(t, err)
	assert.Equal(t, 2, rates.Len())

	inverse, err := s.ExchangeRates(ctx, "CAD", "USD", perfledger.NewRange(perfledger.NewDate(2024, 1, 1), perfledger.NewDate(2024, 1, 31)))
	require.NoError(t, err)
	assert.Equal(t, 0, inverse.Len())
}

func TestStore_PutReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	day := perfledger.NewDate(2024, 1, 2)

	require.NoError(t, s.Put(ctx, []perfledger.Quote{{On: day, Symbol: "XEQT", Value: 28}}))
	require.NoError(t, s.Put(ctx, []perfledger.Quote{{On: day, Symbol: "XEQT", Value: 29}}))

	h, err := s.ClosingPrices(ctx, "XEQT", perfledger.NewRange(day, day))
	require.NoError(t, err)
	v, ok := h.Get(day)
	require.True(t, ok)
	assert.Equal(t, 29.0, v)
}

func TestStore_Export(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.Import(ctx, "market.jsonl", strings.NewReader(market))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Export(ctx, &buf))
	assert.Equal(t, market, buf.String())
}

func TestStore_AsProvider(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.Import(ctx, "market.jsonl", strings.NewReader(market))
	require.NoError(t, err)

	activities := []perfledger.ActivityRecord{
		{TradeDate: perfledger.NewDate(2024, 1, 2), Type: perfledger.TypeDeposits, NetAmount: decimal.NewFromInt(1000), Currency: "USD"},
	}
	acct := perfledger.AccountContext{
		AccountID:    "TFSA",
		BaseCurrency: "CAD",
		AsOf:         time.Date(2024, 1, 5, 16, 0, 0, 0, time.UTC),
	}
	eng := perfledger.NewEngine(s, perfledger.DefaultOptions(), zerolog.Nop())
	res, err := eng.Compute(ctx, acct, activities, perfledger.BalanceSnapshot{TotalEquity: decimal.NewFromInt(1000), Currency: "USD"})
	require.NoError(t, err)

	assert.True(t, res.Summary.NetDeposits.Equal(perfledger.M(1340, "CAD")), "net deposits = %v", res.Summary.NetDeposits)
	assert.True(t, res.Summary.TotalEquity.Equal(perfledger.M(1350, "CAD")), "equity = %v", res.Summary.TotalEquity)
	assert.Empty(t, res.Issues)
}
