package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/centavoapp/centavo/internal/advisor"
	"github.com/centavoapp/centavo/internal/cli"
	"github.com/centavoapp/centavo/internal/common"
	"github.com/centavoapp/centavo/internal/config"
	"github.com/centavoapp/centavo/internal/importer"
	"github.com/centavoapp/centavo/internal/ledger"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a bank statement into a wallet",
		Long: `Parse an OFX/QFX or CSV statement and record each row as a journal
entry against the wallet, moving its balance. Rows are categorized with
the configured advisor when available, falling back to keyword matching.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Int64("user", 0, "user ID owning the wallet (required)")
	cmd.Flags().Int64("wallet", 0, "destination wallet ID (required)")
	cmd.Flags().Bool("no-categorize", false, "skip categorization, import everything uncategorized")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("wallet")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetInt64("user")
	walletID, _ := cmd.Flags().GetInt64("wallet")
	noCategorize, _ := cmd.Flags().GetBool("no-categorize")

	cfg := config.Load()
	store, err := initStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var advisorSvc *advisor.Service
	if !noCategorize {
		client, cerr := initAdvisorClient(cfg)
		if cerr != nil {
			return cerr
		}
		advisorSvc = advisor.NewService(store, client)
	}

	imp := importer.New(ledger.New(store), advisorSvc, os.Stdout)
	stats, err := imp.ImportFile(cmd.Context(), userID, walletID, args[0])
	if err != nil {
		return common.NewUserError(fmt.Sprintf("could not import %s", args[0]), err)
	}

	summary := fmt.Sprintf("Imported: %d\nCategorized: %d\nFailed: %d",
		stats.Imported, stats.Categorized, stats.Failed)
	fmt.Println(cli.RenderBox("Import Complete", summary))

	if stats.Failed > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("%d rows failed, see the log for details", stats.Failed)))
	}
	return nil
}
