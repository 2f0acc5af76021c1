package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mathmentor/mentor/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing solving and case memory tools for AI agents.`,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	bank, err := openBank(cfg)
	if err != nil {
		return err
	}
	meter := openMeter(cfg)
	ix, err := loadIndex(ctx, cfg)
	if err != nil {
		return err
	}

	orch, err := buildOrchestrator(cfg, ix, bank, meter, nil)
	if err != nil {
		return err
	}

	mcpserver.Version = Version

	// Stdout carries the MCP protocol; status goes to stderr.
	fmt.Fprintf(os.Stderr, "mentor MCP server started on stdio (cases=%d, knowledge=%d)\n", bank.Len(), ix.Count())

	return mcpserver.NewServer(orch, bank).Serve()
}
