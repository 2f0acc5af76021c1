package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all stored cases",
	Long:  `Empties case memory on disk and in memory. This cannot be undone.`,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "skip confirmation")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	bank, err := openBank(cfg)
	if err != nil {
		return err
	}

	n := bank.Len()
	if n == 0 {
		fmt.Println("Case memory is already empty.")
		return nil
	}

	if !resetForce {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete %d case(s)", n),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := bank.Reset(); err != nil {
		return fmt.Errorf("resetting case memory: %w", err)
	}
	fmt.Printf("Deleted %d case(s).\n", n)
	return nil
}
