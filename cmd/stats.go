package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mathmentor/mentor/internal/db"
	"github.com/mathmentor/mentor/internal/usage"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show LLM token usage and estimated cost",
	Long:  `Summarizes the usage ledger: calls, tokens and estimated cost per pipeline stage.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.UsageDB())
	if err != nil {
		return fmt.Errorf("opening usage ledger: %w", err)
	}
	defer database.Close()

	stats, err := usage.NewMeter(database).Stats()
	if err != nil {
		return fmt.Errorf("reading usage ledger: %w", err)
	}

	if stats.TotalCalls == 0 {
		fmt.Println("No usage recorded yet.")
		return nil
	}

	fmt.Printf("%-10s %8s %14s %15s %12s\n", "stage", "calls", "input tokens", "output tokens", "cost (USD)")
	for _, s := range stats.ByStage {
		fmt.Printf("%-10s %8d %14d %15d %12.4f\n", s.Stage, s.Calls, s.InputTokens, s.OutputTokens, s.CostUSD)
	}
	fmt.Printf("%-10s %8d %14d %15d %12.4f\n", "total", stats.TotalCalls, stats.TotalInputTokens, stats.TotalOutputTokens, stats.TotalCostUSD)
	return nil
}
