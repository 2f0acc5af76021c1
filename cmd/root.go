package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "mentor",
	Short: "AI math tutor with verification and case memory",
	Long: `Mentor solves math problems through a staged reasoning pipeline:
it parses the problem, retrieves reference material and similar past
cases, solves, verifies its own work, and explains the result step by
step. Every human-judged interaction is saved to a searchable case
memory that informs future solves.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".mentor.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
