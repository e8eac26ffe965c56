package perfledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Options tunes a computation. The zero value is not usable, start from
// DefaultOptions.
type Options struct {
	Anomaly          AnomalyOptions `yaml:"anomaly"`
	Solver           SolverOptions  `yaml:"-"`
	TrailingMonths   []int          `yaml:"trailing_months"`
	MaxQuoteAge      int            `yaml:"max_quote_age"`
	IncludePreAnchor bool           `yaml:"include_pre_anchor"`
}

func DefaultOptions() Options {
	return Options{
		Anomaly:        DefaultAnomalyOptions(),
		Solver:         DefaultSolverOptions(),
		TrailingMonths: DefaultTrailingMonths,
		MaxQuoteAge:    DefaultMaxQuoteAge,
	}
}

// BalanceSnapshot is the authoritative total equity of an account now.
type BalanceSnapshot struct {
	TotalEquity decimal.Decimal `json:"totalEquity" yaml:"total_equity"`
	Currency    string          `json:"currency" yaml:"currency"`
}

// Account bundles everything needed to compute one account.
type Account struct {
	Context    AccountContext   `json:"context"`
	Activities []ActivityRecord `json:"activities"`
	Balance    BalanceSnapshot  `json:"balance"`
}

// Result is the performance of one account.
type Result struct {
	Account  string       `json:"account"`
	Currency string       `json:"currency"`
	AsOf     Date         `json:"asOf"`
	Baseline Baseline     `json:"baseline"`
	Summary  Summary      `json:"summary"`
	Points   []DailyPoint `json:"points"`
	// Reconciliation is the correction added to the last day so that its
	// equity matches the balance.
	Reconciliation Money        `json:"reconciliation"`
	Adjustments    []Adjustment `json:"adjustments"`
	Issues         []Issue      `json:"issues"`
}

// Engine computes account performance. It holds no state between
// computations and is safe for concurrent use.
type Engine struct {
	provider Provider
	opt      Options
	log      zerolog.Logger
}

// NewEngine returns an Engine valuing positions with p. A nil provider is
// allowed: only base currency activities can then be converted and every
// position is valued at cost.
func NewEngine(p Provider, opt Options, log zerolog.Logger) *Engine {
	return &Engine{
		provider: p,
		opt:      opt,
		log:      log.With().Str("component", "engine").Logger(),
	}
}

// Compute returns the daily series and summary of one account.
//
// Errors are contract violations and wrap ErrInvalidInput, or come from ctx.
// Data problems never fail a computation, they are reported in Result.Issues.
func (e *Engine) Compute(ctx context.Context, acct AccountContext, activities []ActivityRecord, balance BalanceSnapshot) (*Result, error) {
	log := e.log.With().Str("account", acct.AccountID).Logger()

	asOf, earliest, err := validate(acct, activities, balance)
	if err != nil {
		return nil, err
	}
	acct.EarliestFundingDate = earliest
	base := acct.BaseCurrency
	balanceCurrency := balance.Currency
	if balanceCurrency == "" {
		balanceCurrency = base
	}

	needs := planNeeds(activities, base, asOf)
	needs.currency(balanceCurrency, NewRange(asOf, asOf))
	md, err := Prefetch(ctx, e.provider, base, e.opt.MaxQuoteAge, needs, log)
	if err != nil {
		return nil, fmt.Errorf("prefetching market data: %w", err)
	}

	equityNow, ok := md.Convert(balance.TotalEquity, balanceCurrency, asOf)
	if !ok {
		return nil, invalidf("balance currency %s cannot be converted to %s on %s", balanceCurrency, base, asOf)
	}

	entries, issues := Ingest(activities, md, log)
	est := reconstruct(entries, md, base, NewRange(earliest, asOf))
	baseline := Anchor(acct, est)
	series, plug := buildSeries(est, baseline, equityNow, e.opt.IncludePreAnchor)
	adjustments, compensated := Compensate(series, e.opt.Anomaly)
	summary := Summarize(series, e.opt.TrailingMonths, e.opt.Solver)

	issues = append(issues, approximationIssues(est, baseline.Date)...)
	issues = append(issues, compensated...)
	slices.SortStableFunc(issues, func(a, b Issue) int { return a.Date.DaysSince(b.Date) })
	if issues == nil {
		issues = []Issue{}
	}
	if adjustments == nil {
		adjustments = []Adjustment{}
	}

	log.Debug().
		Stringer("baseline", baseline.Date).
		Bool("anchored", baseline.Anchored).
		Int("entries", len(entries)).
		Int("issues", len(issues)).
		Stringer("reconciliation", plug).
		Stringer("annualized", summary.AnnualizedReturn).
		AnErr("solver", summary.AnnualizedReturn.Err).
		Msg("account computed")

	return &Result{
		Account:        acct.AccountID,
		Currency:       base,
		AsOf:           asOf,
		Baseline:       baseline,
		Summary:        summary,
		Points:         series.Points,
		Reconciliation: plug,
		Adjustments:    adjustments,
		Issues:         issues,
	}, nil
}

// ComputeAccounts computes independent accounts concurrently. Results are in
// the order of accounts. The first error cancels the others.
func (e *Engine) ComputeAccounts(ctx context.Context, accounts []Account) ([]*Result, error) {
	results := make([]*Result, len(accounts))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range accounts {
		g.Go(func() error {
			res, err := e.Compute(gctx, a.Context, a.Activities, a.Balance)
			if err != nil {
				return fmt.Errorf("account %q: %w", a.Context.AccountID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// validate checks the engine contract. It returns the as-of date and the
// earliest funding date, defaulted to the first activity.
func validate(acct AccountContext, activities []ActivityRecord, balance BalanceSnapshot) (asOf, earliest Date, err error) {
	switch {
	case acct.AccountID == "":
		return asOf, earliest, invalidf("empty account id")
	case acct.AsOf.IsZero():
		return asOf, earliest, invalidf("account %s: missing as-of time", acct.AccountID)
	case balance.TotalEquity.IsNegative():
		return asOf, earliest, invalidf("account %s: negative balance %s", acct.AccountID, balance.TotalEquity)
	}
	if err := ValidateCurrency(acct.BaseCurrency); err != nil {
		return asOf, earliest, fmt.Errorf("%w: account %s: %w", ErrInvalidInput, acct.AccountID, err)
	}
	if balance.Currency != "" {
		if err := ValidateCurrency(balance.Currency); err != nil {
			return asOf, earliest, fmt.Errorf("%w: account %s balance: %w", ErrInvalidInput, acct.AccountID, err)
		}
	}

	asOf = DateOf(acct.AsOf)
	earliest = acct.EarliestFundingDate
	if earliest.IsZero() {
		earliest = asOf
		for _, a := range activities {
			if d := a.Date(); !d.IsZero() && d.Before(earliest) {
				earliest = d
			}
		}
	}
	if earliest.After(asOf) {
		return asOf, earliest, invalidf("account %s: earliest funding %s after as-of %s", acct.AccountID, earliest, asOf)
	}
	if acct.CAGRStartDate.After(asOf) {
		return asOf, earliest, invalidf("account %s: CAGR start %s after as-of %s", acct.AccountID, acct.CAGRStartDate, asOf)
	}
	for i, a := range activities {
		d := a.Date()
		switch {
		case d.IsZero():
			return asOf, earliest, invalidf("account %s: activity #%d has no date", acct.AccountID, i)
		case d.Before(earliest):
			return asOf, earliest, invalidf("account %s: activity #%d on %s before earliest funding %s", acct.AccountID, i, d, earliest)
		case d.After(asOf):
			return asOf, earliest, invalidf("account %s: activity #%d on %s after as-of %s", acct.AccountID, i, d, asOf)
		}
	}
	return asOf, earliest, nil
}
