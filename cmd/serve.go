package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/perfledger"
	"github.com/etnz/perfledger/api"
	"github.com/google/subcommands"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct {
	listen string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve performance computations over HTTP" }
func (*serveCmd) Usage() string {
	return `perf serve [-listen <addr>]

  Starts the HTTP server. POST /api/performance computes one account from
  the request body, valued with the market database.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.listen, "listen", "", "Listen address, overrides the configuration")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.listen != "" {
		cfg.Listen = c.listen
	}
	log := newLogger(cfg.LogLevel, cfg.Pretty)

	store, err := openMarket(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening market data: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	srv := api.New(api.Config{
		Listen: cfg.Listen,
		Log:    log,
		Engine: perfledger.NewEngine(store, cfg.Options(), log),
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server failed")
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return subcommands.ExitFailure
		}
	}
	log.Info().Msg("Server stopped")
	return subcommands.ExitSuccess
}
