// Package cmd implements the perf CLI application.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/perfledger"
	"github.com/etnz/perfledger/config"
	"github.com/etnz/perfledger/marketdb"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// EnvConfigFile is the default config file, the -config flag wins over it.
const EnvConfigFile = "PERF_CONFIG"

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&summaryCmd{}, "performance")
	c.Register(&seriesCmd{}, "performance")

	c.Register(&importMarketCmd{}, "data")
	c.Register(&exportMarketCmd{}, "data")
	c.Register(&importQuestradeCmd{}, "data")

	c.Register(&serveCmd{}, "server")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", defaultConfigFile(), "Path to the YAML configuration file")
	marketDB   = flag.String("market", "", "Path to the market data SQLite database, overrides the configuration")
	Verbose    = flag.Bool("v", false, "Log debug messages")
)

func defaultConfigFile() string {
	if f := os.Getenv(EnvConfigFile); f != "" {
		return f
	}
	return "perf.yaml"
}

// loadConfig loads the configuration and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *marketDB != "" {
		cfg.MarketDB = *marketDB
	}
	if verbose, _ := strconv.ParseBool(os.Getenv(EnvVerbose)); *Verbose || verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// openMarket opens the market data store of the configuration.
func openMarket(cfg *config.Config, log zerolog.Logger) (*marketdb.Store, error) {
	path := cfg.MarketDB
	if path != *marketDB {
		path = cfg.Path(path)
	}
	return marketdb.Open(path, log)
}

// loadAccounts reads the activities of the configured accounts named in ids,
// or of every account when ids is empty.
func loadAccounts(cfg *config.Config, ids []string, asOf time.Time) ([]perfledger.Account, error) {
	for _, id := range ids {
		if _, ok := cfg.Account(id); !ok {
			return nil, fmt.Errorf("unknown account %q", id)
		}
	}
	var accounts []perfledger.Account
	for _, a := range cfg.Accounts {
		if len(ids) > 0 && !slices.Contains(ids, a.ID) {
			continue
		}
		activities, err := readActivities(cfg.Path(a.Activities))
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, perfledger.Account{
			Context:    a.Context(asOf, cfg.BaseCurrency),
			Activities: activities,
			Balance:    a.Snapshot(),
		})
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no account configured in %s", *configFile)
	}
	return accounts, nil
}

// readActivities decodes a JSONL activities file. A missing file is an empty list.
func readActivities(path string) ([]perfledger.ActivityRecord, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return perfledger.DecodeActivities(path, f)
}

// writeActivities replaces a JSONL activities file.
func writeActivities(path string, records []perfledger.ActivityRecord) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := perfledger.EncodeActivities(f, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// parseAsOf parses the -d flag. A bare date means the end of that day.
func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := perfledger.ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, time.Local), nil
}

// printMarkdown renders markdown on the terminal, or prints it raw when it
// cannot be styled.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
