package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/etnz/perfledger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cashOnly = `{
  "account": {"accountId": "TFSA", "baseCurrency": "CAD", "earliestFundingDate": "2024-01-01", "asOf": "2024-01-10T17:00:00Z"},
  "activities": [
    {"tradeDate": "2024-01-02T00:00:00.000000-05:00", "type": "Deposits", "action": "DEP", "netAmount": 1000, "currency": "CAD", "description": "DEPOSIT"},
    {"tradeDate": "2024-01-05", "type": "Interest", "action": "", "netAmount": 75, "currency": "CAD", "description": "INTEREST"},
    {"tradeDate": "2024-01-08", "type": "Fees and rebates", "action": "FCH", "netAmount": -25, "currency": "CAD", "description": "FEE"}
  ],
  "balance": {"totalEquity": 1050, "currency": "CAD"}
}`

func newTestServer() *Server {
	log := zerolog.Nop()
	return New(Config{Log: log, Engine: perfledger.NewEngine(nil, perfledger.DefaultOptions(), log)})
}

func post(t *testing.T, s *Server, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestPerformance(t *testing.T) {
	rec := post(t, newTestServer(), "/api/performance", cashOnly)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res struct {
		Account string `json:"account"`
		Summary struct {
			NetDeposits struct{ Amount float64 } `json:"netDeposits"`
			TotalPnL    struct{ Amount float64 } `json:"totalPnL"`
			TotalEquity struct{ Amount float64 } `json:"totalEquity"`
		} `json:"summary"`
		Points []json.RawMessage `json:"points"`
		Issues []json.RawMessage `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "TFSA", res.Account)
	assert.Equal(t, 1000.0, res.Summary.NetDeposits.Amount)
	assert.Equal(t, 50.0, res.Summary.TotalPnL.Amount)
	assert.Equal(t, 1050.0, res.Summary.TotalEquity.Amount)
	// 2024-01-01 to 2024-01-10
	assert.Len(t, res.Points, 10)
	assert.Empty(t, res.Issues)
}

func TestPerformance_Markdown(t *testing.T) {
	rec := post(t, newTestServer(), "/api/performance?format=markdown", cashOnly)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "# Performance of TFSA as of 2024-01-10")
}

func TestPerformance_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "malformed body",
			body: `{"account":`,
			want: "invalid request body",
		},
		{
			name: "missing account id",
			body: strings.Replace(cashOnly, `"accountId": "TFSA"`, `"accountId": ""`, 1),
			want: "invalid input",
		},
		{
			name: "negative balance",
			body: strings.Replace(cashOnly, `"totalEquity": 1050`, `"totalEquity": -1`, 1),
			want: "invalid input",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, newTestServer(), "/api/performance", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tt.want)
		})
	}
}

func TestPerformance_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/performance", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
