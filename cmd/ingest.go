package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mathmentor/mentor/internal/knowledge"
	"github.com/mathmentor/mentor/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index reference material into the knowledge base",
	Long: `Walks the configured knowledge directory, splits matching documents
into passages and embeds them into the vector index used for retrieval
during solving.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("dir", "", "override the configured knowledge directory")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.KnowledgeDir
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("knowledge directory %s: %w", dir, err)
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return err
	}
	ix, err := knowledge.NewIndex(embedder)
	if err != nil {
		return fmt.Errorf("creating knowledge index: %w", err)
	}

	stats, err := knowledge.Ingest(ctx, ix, dir, cfg.Include, cfg.Exclude, progress.NewReporter())
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", dir, err)
	}
	if stats.Passages == 0 {
		fmt.Printf("No matching documents found in %s.\n", dir)
		return nil
	}

	if err := os.MkdirAll(cfg.VectorDir(), 0o755); err != nil {
		return fmt.Errorf("creating vector dir: %w", err)
	}
	if err := ix.Persist(ctx, cfg.VectorDir()); err != nil {
		return fmt.Errorf("persisting index: %w", err)
	}

	fmt.Printf("Indexed %d passage(s) from %d file(s) into %s.\n", stats.Passages, stats.Files, cfg.VectorDir())
	return nil
}
