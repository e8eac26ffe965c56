package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/perfledger/marketdb"
	"github.com/google/subcommands"
)

// importMarketCmd holds the flags for the 'import-market' subcommand.
type importMarketCmd struct{}

func (*importMarketCmd) Name() string     { return "import-market" }
func (*importMarketCmd) Synopsis() string { return "import closing prices and exchange rates" }
func (*importMarketCmd) Usage() string {
	return `perf import-market <file.jsonl>...

  Stores the quotes of market data JSONL files into the market database.
  Each line holds the quotes of one day:

    {"on":"2025-01-02","XEQT.TO":31.52,"USDCAD":1.4382}

  Keys made of two currency codes are exchange rates, others are closing
  prices. Quotes already stored for the same day are replaced.
`
}

func (c *importMarketCmd) SetFlags(f *flag.FlagSet) {}

func (c *importMarketCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one market data file is required")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	store, err := openMarket(cfg, newLogger(cfg.LogLevel, cfg.Pretty))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening market data: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	total := 0
	for _, name := range f.Args() {
		n, err := importMarketFile(ctx, store, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		total += n
	}
	fmt.Printf("Imported %d quotes from %d files\n", total, f.NArg())
	return subcommands.ExitSuccess
}

func importMarketFile(ctx context.Context, store *marketdb.Store, name string) (int, error) {
	f, err := os.Open(name)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return store.Import(ctx, name, f)
}

// exportMarketCmd holds the flags for the 'export-market' subcommand.
type exportMarketCmd struct {
	output string
}

func (*exportMarketCmd) Name() string     { return "export-market" }
func (*exportMarketCmd) Synopsis() string { return "export the market database as JSONL" }
func (*exportMarketCmd) Usage() string {
	return `perf export-market [-o <file.jsonl>]

  Writes every stored quote, one line per day, in the format read by
  import-market.
`
}

func (c *exportMarketCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file, defaults to stdout")
}

func (c *exportMarketCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	store, err := openMarket(cfg, newLogger(cfg.LogLevel, cfg.Pretty))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening market data: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	w := os.Stdout
	if c.output != "" {
		if w, err = os.Create(c.output); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer w.Close()
	}
	if err := store.Export(ctx, w); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting market data: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
