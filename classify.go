package perfledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind is the ledger bucket of an activity. It is a closed set: every switch
// over a Kind must handle the three values and panic on anything else.
type Kind int

const (
	// ExternalFlow is cash (or securities) entering or leaving the account
	// from outside: deposits, withdrawals, transfers.
	ExternalFlow Kind = iota + 1
	// TradingFlow converts cash into a position of equal value or back.
	// It never changes net deposits.
	TradingFlow
	// NonFlowGain is income or loss generated inside the account:
	// dividends, interest, fees, FX conversion legs.
	NonFlowGain
)

func (k Kind) String() string {
	switch k {
	case ExternalFlow:
		return "external-flow"
	case TradingFlow:
		return "trading-flow"
	case NonFlowGain:
		return "non-flow-gain"
	default:
		panic(fmt.Sprintf("unknown ledger kind %d", int(k)))
	}
}

// MarshalText encodes a Kind as its name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Action codes used by the activity feed.
const (
	actionBuy          = "BUY"
	actionSell         = "SELL"
	actionDeposit      = "DEP"
	actionContribution = "CON"
	actionWithdrawal   = "WDR"
	actionTransferIn   = "TF6"
	actionTransferOut  = "TFO"
	actionTransfer     = "TSF" // either way, the amount sign tells
	actionJournal      = "JRN"
	actionReinvest     = "REI"
)

// Classify returns the ledger bucket of an activity. Rules are checked in
// order, first match wins:
//
//  1. deposits, withdrawals and transfers that are not a security-for-security
//     journal are external flows,
//  2. trades, journals and dividend reinvestments are trading flows,
//  3. anything else is a non-flow gain.
func Classify(a ActivityRecord) Kind {
	action := a.action()
	switch {
	case a.is(TypeDeposits), a.is(TypeWithdrawals):
		return ExternalFlow
	case a.is(TypeTransfers) && action != actionJournal:
		return ExternalFlow
	case action == actionDeposit, action == actionContribution, action == actionWithdrawal,
		action == actionTransferIn, action == actionTransferOut, action == actionTransfer:
		return ExternalFlow
	case a.is(TypeTrades), a.is(TypeDividendReinvestment), action == actionJournal, action == actionReinvest:
		return TradingFlow
	default:
		return NonFlowGain
	}
}

// isOutgoing reports whether an external flow takes value out of the account.
func isOutgoing(a ActivityRecord, r ResolvedAmount) bool {
	switch a.action() {
	case actionWithdrawal, actionTransferOut:
		return true
	case actionDeposit, actionContribution, actionTransferIn:
		return false
	}
	switch {
	case a.is(TypeWithdrawals):
		return true
	case a.is(TypeDeposits):
		return false
	case r.FromDescription:
		// text amounts carry no sign, securities leaving carry a negative quantity.
		return a.Quantity.IsNegative()
	default:
		return r.Amount.IsNegative()
	}
}

// signedAmount returns the amount of an activity with the sign of its
// effect on the account cash: positive when value comes in.
func signedAmount(a ActivityRecord, r ResolvedAmount, kind Kind) decimal.Decimal {
	abs := r.Amount.Abs()
	switch kind {
	case ExternalFlow:
		if isOutgoing(a, r) {
			return abs.Neg()
		}
		return abs
	case TradingFlow:
		switch a.action() {
		case actionBuy, actionReinvest:
			return abs.Neg()
		case actionSell:
			return abs
		}
		if r.FromDescription {
			// without a structured amount the quantity tells the direction.
			if a.Quantity.IsPositive() {
				return abs.Neg()
			}
			return abs
		}
		return r.Amount
	case NonFlowGain:
		if r.FromDescription {
			return abs
		}
		return r.Amount
	default:
		panic(fmt.Sprintf("unknown ledger kind %d", int(kind)))
	}
}

// signedQuantity returns the position change of an activity: positive when
// shares come in.
func signedQuantity(a ActivityRecord, kind Kind, amount decimal.Decimal) Quantity {
	if a.Symbol == "" || a.Quantity.IsZero() {
		return Quantity{}
	}
	abs := a.Quantity.Abs()
	switch kind {
	case ExternalFlow:
		if amount.IsNegative() {
			return Q(abs.Neg())
		}
		return Q(abs)
	case TradingFlow:
		switch a.action() {
		case actionBuy, actionReinvest:
			return Q(abs)
		case actionSell:
			return Q(abs.Neg())
		}
		return Q(a.Quantity)
	case NonFlowGain:
		// dividends and interest reference a symbol but do not move shares.
		return Quantity{}
	default:
		panic(fmt.Sprintf("unknown ledger kind %d", int(kind)))
	}
}
