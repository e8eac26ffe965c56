package perfledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ActivityType is the brokerage category of an activity record, as the
// activity feed names it.
type ActivityType string

const (
	TypeDeposits             ActivityType = "Deposits"
	TypeWithdrawals          ActivityType = "Withdrawals"
	TypeTransfers            ActivityType = "Transfers"
	TypeTrades               ActivityType = "Trades"
	TypeDividendReinvestment ActivityType = "Dividend reinvestment"
	TypeDividends            ActivityType = "Dividends"
	TypeInterest             ActivityType = "Interest"
	TypeFeesAndRebates       ActivityType = "Fees and rebates"
	TypeFXConversion         ActivityType = "FX conversion"
	TypeCorporateActions     ActivityType = "Corporate actions"
	TypeOther                ActivityType = "Other"
)

// ActivityRecord is one brokerage event, as received from the activity feed.
// It is never modified once decoded.
//
// Amount and currency fields may be zero even when the event carries real
// economic value (in-kind transfers stamp the value in the description).
type ActivityRecord struct {
	TradeDate       Date            `json:"tradeDate"`
	TransactionDate Date            `json:"transactionDate"`
	SettlementDate  Date            `json:"settlementDate"`
	Type            ActivityType    `json:"type"`
	Action          string          `json:"action"`
	Symbol          string          `json:"symbol,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	GrossAmount     decimal.Decimal `json:"grossAmount"`
	Commission      decimal.Decimal `json:"commission"`
	NetAmount       decimal.Decimal `json:"netAmount"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description"`
}

// Date returns the date the activity takes effect: the trade date, or the
// transaction or settlement date when the feed left it blank.
func (a ActivityRecord) Date() Date {
	switch {
	case !a.TradeDate.IsZero():
		return a.TradeDate
	case !a.TransactionDate.IsZero():
		return a.TransactionDate
	default:
		return a.SettlementDate
	}
}

// action returns the normalized action code.
func (a ActivityRecord) action() string {
	return strings.ToUpper(strings.TrimSpace(a.Action))
}

// is reports whether the record type matches t, ignoring case.
func (a ActivityRecord) is(t ActivityType) bool {
	return strings.EqualFold(strings.TrimSpace(string(a.Type)), string(t))
}
