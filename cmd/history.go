package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past solved cases",
	Long:  `Lists recorded cases from case memory, oldest first.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "maximum number of cases to show (0 for all)")
	historyCmd.Flags().Bool("json", false, "output cases as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	bank, err := openBank(cfg)
	if err != nil {
		return err
	}

	records := bank.All()
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("Case memory is empty. Solve a problem first.")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %s\n", rec.Timestamp.Format("2006-01-02 15:04"), rec.ID)
		fmt.Printf("  problem:  %s (%s, %s)\n", rec.ParsedProblem.ProblemText, rec.ParsedProblem.Topic, rec.InputType)
		fmt.Printf("  feedback: %s\n", rec.Feedback)
		if rec.UserComment != "" {
			fmt.Printf("  comment:  %s\n", rec.UserComment)
		}
		fmt.Println()
	}
	fmt.Printf("%d case(s).\n", len(records))
	return nil
}

var similarCmd = &cobra.Command{
	Use:   "similar [problem]",
	Short: "Find past cases similar to a problem",
	Long:  `Searches case memory for problems similar to the query text, ranked by similarity.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilar,
}

func init() {
	similarCmd.Flags().Int("limit", 3, "maximum number of cases to return")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	bank, err := openBank(cfg)
	if err != nil {
		return err
	}

	matches := bank.FindSimilar(args[0], limit)
	if len(matches) == 0 {
		fmt.Println("No similar cases found.")
		return nil
	}

	for i, m := range matches {
		fmt.Printf("%d. [%.2f] %s\n", i+1, m.Score, m.Record.ParsedProblem.ProblemText)
		fmt.Printf("   solution: %s\n", m.Record.Solution)
		fmt.Printf("   feedback: %s\n\n", m.Record.Feedback)
	}
	return nil
}
