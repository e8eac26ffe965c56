package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/perfledger"
	"github.com/etnz/perfledger/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	accounts string
	date     string
	json     bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the performance summary of accounts" }
func (*summaryCmd) Usage() string {
	return `perf summary [-a <id,id>] [-d <date>] [-json]

  Computes every configured account (or the listed ones) and displays net
  deposits, equity, total P&L, the annualized return and trailing returns.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.accounts, "a", "", "Comma separated account ids. Defaults to every configured account.")
	f.StringVar(&c.date, "d", "", "As-of date, defaults to now. See the user manual for supported date formats.")
	f.BoolVar(&c.json, "json", false, "Print the full results as JSON instead of markdown")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	results, status := compute(ctx, c.accounts, c.date)
	if status != subcommands.ExitSuccess {
		return status
	}
	if c.json {
		if err := perfledger.EncodeResult(os.Stdout, results); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding results: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderResults(results))
	return subcommands.ExitSuccess
}

// compute loads the configuration and computes the selected accounts.
func compute(ctx context.Context, accounts, date string) ([]*perfledger.Result, subcommands.ExitStatus) {
	asOf, err := parseAsOf(date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return nil, subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	log := newLogger(cfg.LogLevel, cfg.Pretty)

	var ids []string
	if accounts != "" {
		ids = strings.Split(accounts, ",")
	}
	accts, err := loadAccounts(cfg, ids, asOf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading accounts: %v\n", err)
		return nil, subcommands.ExitFailure
	}

	store, err := openMarket(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening market data: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	defer store.Close()

	engine := perfledger.NewEngine(store, cfg.Options(), log)
	results, err := engine.ComputeAccounts(ctx, accts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing performance: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	for _, res := range results {
		for _, issue := range res.Issues {
			log.Warn().Str("account", res.Account).Str("kind", string(issue.Kind)).Stringer("date", issue.Date).Msg(issue.Message)
		}
	}
	return results, subcommands.ExitSuccess
}
