// Command dolinear-admin runs maintenance tasks against the dolinear database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dafibh/dolinear/dolinear-backend/internal/config"
	"github.com/dafibh/dolinear/dolinear-backend/internal/repository/postgres"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfg   *config.Config
	store *postgres.Store
)

var rootCmd = &cobra.Command{
	Use:           "dolinear-admin",
	Short:         "Maintenance commands for the dolinear backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		return err
	},
}

// openStore connects lazily so commands that never touch the database stay offline
func openStore(ctx context.Context) (*postgres.Store, error) {
	if store != nil {
		return store, nil
	}
	s, err := postgres.Open(ctx, postgres.PoolConfig{
		DatabaseURL:      cfg.DatabaseURL,
		MaxConns:         2,
		StatementTimeout: cfg.StatementTimeout,
	})
	if err != nil {
		return nil, err
	}
	store = s
	return store, nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if store != nil {
		store.Close()
	}
	if err != nil {
		log.Error().Err(err).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}
