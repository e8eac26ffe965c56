package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/perfledger"
	"github.com/etnz/perfledger/renderer"
	"github.com/google/subcommands"
)

// seriesCmd holds the flags for the 'series' subcommand.
type seriesCmd struct {
	account string
	date    string
	monthly bool
	json    bool
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "display the daily history of an account" }
func (*seriesCmd) Usage() string {
	return `perf series -a <id> [-d <date>] [-monthly] [-json]

  Displays net deposits, equity and total P&L for every day of an account.
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account id. Required when several accounts are configured.")
	f.StringVar(&c.date, "d", "", "As-of date, defaults to now. See the user manual for supported date formats.")
	f.BoolVar(&c.monthly, "monthly", false, "Only show month ends")
	f.BoolVar(&c.json, "json", false, "Print the points as JSON instead of markdown")
}

func (c *seriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	results, status := compute(ctx, c.account, c.date)
	if status != subcommands.ExitSuccess {
		return status
	}
	if len(results) != 1 {
		fmt.Fprintln(os.Stderr, "several accounts are configured, select one with -a")
		return subcommands.ExitUsageError
	}
	res := results[0]

	if c.json {
		if err := perfledger.EncodeResult(os.Stdout, res.Points); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding points: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderSeries(res, renderer.SeriesOptions{Monthly: c.monthly}))
	return subcommands.ExitSuccess
}
