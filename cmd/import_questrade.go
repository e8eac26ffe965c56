package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/perfledger"
	"github.com/etnz/perfledger/questrade"
	"github.com/google/subcommands"
)

// importQuestradeCmd holds the flags for the 'import-questrade' subcommand.
type importQuestradeCmd struct {
	account string
	path    string
}

func (*importQuestradeCmd) Name() string { return "import-questrade" }
func (*importQuestradeCmd) Synopsis() string {
	return "merge Questrade activity dumps into an account"
}
func (*importQuestradeCmd) Usage() string {
	return `perf import-questrade -a <id> [-path <jsonpath>] <dump.json>...

  Reads the activities of Questrade API responses and merges them into the
  activities file of the account. Activities already present are skipped, so
  overlapping dumps can be imported again.
`
}

func (c *importQuestradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account id")
	f.StringVar(&c.path, "path", questrade.DefaultPath, "JSONPath selecting the activities in each dump")
}

func (c *importQuestradeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" || f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "an account and at least one dump file are required")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	acct, ok := cfg.Account(c.account)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown account %q\n", c.account)
		return subcommands.ExitUsageError
	}
	file := cfg.Path(acct.Activities)

	records, err := readActivities(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading activities %q: %v\n", file, err)
		return subcommands.ExitFailure
	}

	added := 0
	for _, name := range f.Args() {
		dump, err := decodeDump(name, c.path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading dump: %v\n", err)
			return subcommands.ExitFailure
		}
		var n int
		if records, n, err = questrade.Merge(records, dump); err != nil {
			fmt.Fprintf(os.Stderr, "Error merging %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		added += n
	}

	if err := writeActivities(file, records); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing activities %q: %v\n", file, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Added %d activities to %s (%d in total)\n", added, file, len(records))
	return subcommands.ExitSuccess
}

func decodeDump(name, path string) ([]perfledger.ActivityRecord, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return questrade.Decode(name, f, path)
}
