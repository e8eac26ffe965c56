// The perf command measures the performance of brokerage accounts.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/perfledger/cmd"
	"github.com/etnz/perfledger/config"
	"github.com/etnz/perfledger/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// exits when invoked by the shell to complete a command line.
	completion().Complete("perf")

	flag.Parse()

	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func registered(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, sc subcommands.Command) {
		found = found || sc.Name() == name
	})
	return found
}

// completion describes the command line for shell completion.
func completion() *complete.Command {
	account := complete.PredictFunc(predictAccounts)
	date := predict.Set{"0d", "-1d", "-1m", "-1y"}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.yaml"),
			"market": predict.Files("*.db"),
			"v":      predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"summary": {Flags: map[string]complete.Predictor{
				"a": account, "d": date, "json": predict.Nothing,
			}},
			"series": {Flags: map[string]complete.Predictor{
				"a": account, "d": date, "monthly": predict.Nothing, "json": predict.Nothing,
			}},
			"import-market": {Args: predict.Files("*.jsonl")},
			"export-market": {Flags: map[string]complete.Predictor{"o": predict.Files("*.jsonl")}},
			"import-questrade": {
				Flags: map[string]complete.Predictor{"a": account, "path": predict.Something},
				Args:  predict.Files("*.json"),
			},
			"serve": {Flags: map[string]complete.Predictor{"listen": predict.Something}},
			"topic": {Flags: map[string]complete.Predictor{"list": predict.Nothing}, Args: complete.PredictFunc(predictTopics)},
		},
	}
}

func predictTopics(prefix string) []string {
	names, _ := docs.Names()
	return names
}

// predictAccounts lists the account ids of the default configuration.
func predictAccounts(prefix string) []string {
	file := os.Getenv(cmd.EnvConfigFile)
	if file == "" {
		file = "perf.yaml"
	}
	cfg, err := config.Load(file)
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(cfg.Accounts))
	for _, a := range cfg.Accounts {
		ids = append(ids, a.ID)
	}
	return ids
}
