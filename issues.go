package perfledger

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every error caused by a request that breaks
// the engine contract: bad currency codes, a baseline after the as-of date,
// a balance that cannot be converted. Callers test for it with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IssueKind names a class of recoverable data problem.
type IssueKind string

const (
	// IssueUnresolvedAmount is an activity whose value could not be found. It
	// is left out of the ledger.
	IssueUnresolvedAmount IssueKind = "unresolved-amount"
	// IssueMissingRate is an activity whose currency could not be converted
	// on its date. It is left out of the ledger.
	IssueMissingRate IssueKind = "missing-rate"
	// IssueApproximateValuation is a held position valued at cost because no
	// recent closing price was available.
	IssueApproximateValuation IssueKind = "approximate-valuation"
	// IssueAnomalyCompensated is an unexplained drop that was booked as a
	// synthetic withdrawal.
	IssueAnomalyCompensated IssueKind = "anomaly-compensated"
)

// Issue is a warning attached to a result. Issues never stop a computation.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Date    Date      `json:"date"`
	Subject string    `json:"subject,omitempty"` // symbol, currency or activity reference
	Message string    `json:"message"`
	Amount  *Money    `json:"amount,omitempty"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s %s: %s", i.Date, i.Kind, i.Subject, i.Message)
}
