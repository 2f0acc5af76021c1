package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mathmentor/mentor/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize mentor configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure mentor and generates a .mentor.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
