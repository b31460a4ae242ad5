package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/centavoapp/centavo/internal/advisor"
	"github.com/centavoapp/centavo/internal/cli"
	"github.com/centavoapp/centavo/internal/config"
)

func adviseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Get spending advice for a month",
		Long: `Ask the configured advisor for a short narrative about one month of
spending. Requires an advisor provider in the config.`,
		RunE: runAdvise,
	}

	now := time.Now()
	cmd.Flags().Int64("user", 0, "user ID (required)")
	cmd.Flags().Int("year", now.Year(), "year to analyze")
	cmd.Flags().Int("month", int(now.Month()), "month to analyze (1-12)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runAdvise(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetInt64("user")
	year, _ := cmd.Flags().GetInt("year")
	month, _ := cmd.Flags().GetInt("month")
	if month < 1 || month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", month)
	}

	cfg := config.Load()
	store, err := initStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	client, err := initAdvisorClient(cfg)
	if err != nil {
		return err
	}

	advice, err := advisor.NewService(store, client).MonthlyAdvice(cmd.Context(), userID, year, time.Month(month))
	if err != nil {
		return err
	}

	fmt.Println(cli.RenderBox(fmt.Sprintf("%s Advice for %d-%02d", cli.RobotIcon, year, month), advice))
	return nil
}
