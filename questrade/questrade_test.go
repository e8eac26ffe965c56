package questrade

import (
	"strings"
	"testing"

	"github.com/etnz/perfledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dump = `{
  "activities": [
    {
      "tradeDate": "2024-03-01T00:00:00.000000-05:00",
      "transactionDate": "2024-03-01T00:00:00.000000-05:00",
      "settlementDate": "2024-03-01T00:00:00.000000-05:00",
      "action": "",
      "symbol": "XEQT.TO",
      "symbolId": 26298022,
      "description": "XEQT ISHARES CORE EQUITY ETF PORTFOLIO TRANSFER BOOK VALUE 37537.50",
      "currency": "CAD",
      "quantity": 1250,
      "price": 0,
      "grossAmount": 0,
      "commission": 0,
      "netAmount": 0,
      "type": "Transfers"
    },
    {
      "tradeDate": "2024-03-05T00:00:00.000000-05:00",
      "transactionDate": "2024-03-05T00:00:00.000000-05:00",
      "settlementDate": "2024-03-05T00:00:00.000000-05:00",
      "action": "DEP",
      "symbol": "",
      "symbolId": 0,
      "description": "CONTRIBUTION",
      "currency": "CAD",
      "quantity": 0,
      "price": 0,
      "grossAmount": 0,
      "commission": 0,
      "netAmount": 1000.10,
      "type": "Deposits"
    }
  ]
}`

func TestDecode(t *testing.T) {
	records, err := Decode("dump.json", strings.NewReader(dump), "")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, perfledger.NewDate(2024, 3, 1), records[0].Date())
	assert.Equal(t, perfledger.ExternalFlow, perfledger.Classify(records[0]))
	r, ok := perfledger.ResolveAmount(records[0])
	require.True(t, ok)
	assert.True(t, r.Amount.Equal(decimal.RequireFromString("37537.50")))

	assert.True(t, records[1].NetAmount.Equal(decimal.RequireFromString("1000.10")))
}

func TestDecode_Pages(t *testing.T) {
	pages := "[" + dump + "," + dump + "]"
	records, err := Decode("pages.json", strings.NewReader(pages), "$[*].activities[*]")
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode("bad.json", strings.NewReader("{"), "")
	assert.ErrorContains(t, err, "bad.json")

	_, err = Decode("scalar.json", strings.NewReader(`{"activities":[1]}`), "")
	assert.ErrorContains(t, err, "not an object")
}

func TestMerge(t *testing.T) {
	records, err := Decode("dump.json", strings.NewReader(dump), "")
	require.NoError(t, err)

	merged, added, err := Merge(records[1:], records)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	require.Len(t, merged, 2)
	assert.Equal(t, perfledger.NewDate(2024, 3, 1), merged[0].Date(), "sorted by date")

	again, added, err := Merge(merged, records)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Len(t, again, 2)
}
