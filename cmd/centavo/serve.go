package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/centavoapp/centavo/internal/advisor"
	"github.com/centavoapp/centavo/internal/budget"
	"github.com/centavoapp/centavo/internal/config"
	"github.com/centavoapp/centavo/internal/ledger"
	"github.com/centavoapp/centavo/internal/server"
	"github.com/centavoapp/centavo/internal/settle"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Start the JSON API that serves wallets, transactions, budgets, groups
and the advisor. The server runs until interrupted and drains in-flight
requests on shutdown.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.Load()

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	client, err := initAdvisorClient(cfg)
	if err != nil {
		return err
	}
	if client == nil {
		slog.Info("no advisor provider configured, categorization uses keyword fallback only")
	}

	srv := server.New(
		cfg.Server.Addr,
		ledger.New(store),
		budget.New(store),
		settle.New(store),
		advisor.NewService(store, client),
	)

	return srv.Run(ctx)
}
