// Package perfledger reconstructs the daily history of an investment account
// from its brokerage activity feed and measures its performance.
//
// The computation is stateless and runs in stages:
//   - Resolution: every activity gets a value, from its structured amounts or,
//     for in-kind transfers, from the book value written in its description.
//   - Classification: activities are external flows (money in or out),
//     trading flows (cash turned into positions) or non-flow gains
//     (dividends, interest, fees).
//   - Reconstruction: one point per calendar day with net deposits, equity
//     and P&L, positions marked to market and the last day pinned to the
//     account balance.
//   - Compensation: large unexplained drops are booked as synthetic
//     withdrawals so they do not show up as losses.
//   - Summary: annualized money-weighted return (XIRR) since the baseline and
//     over trailing windows.
//
// Market data comes from a Provider, looked up once per computation. The
// marketdb package provides one backed by SQLite.
//
// This package serves as the foundation of the `perf` command-line tool and
// of its HTTP service.
package perfledger
