package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/centavoapp/centavo/internal/cli"
	"github.com/centavoapp/centavo/internal/config"
	"github.com/centavoapp/centavo/internal/ledger"
)

func registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a user account",
		Long: `Create a user with a default cash wallet and the starter category set.
Intended for bootstrapping a local instance.`,
		RunE: runRegister,
	}

	cmd.Flags().String("email", "", "account email (required)")
	cmd.Flags().String("password", "", "account password (required)")
	cmd.Flags().String("name", "", "display name (required)")
	cmd.Flags().String("currency", "", "default wallet currency (default ARS)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runRegister(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	name, _ := cmd.Flags().GetString("name")
	currency, _ := cmd.Flags().GetString("currency")

	cfg := config.Load()
	store, err := initStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	user, err := ledger.New(store).Register(cmd.Context(), email, password, name, currency)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("created user %s (id %d)", user.Email, user.ID)))
	return nil
}
