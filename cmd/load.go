package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/agentic-research/mailcorpus/internal/config"
	"github.com/agentic-research/mailcorpus/internal/ingest"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load [batch-dir]",
	Short: "Load extractor batch files into the corpus database",
	Long: `Load reads every emails_batch_*.json file in the given directory into the
corpus database, then derives threads and per-person activity counts.
Rerunning over the same batches is safe; duplicate message IDs are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		loader, err := ingest.Open(cfg.Database.Path, logger)
		if err != nil {
			return err
		}
		defer func() { _ = loader.Close() }() // safe to ignore

		start := time.Now()
		stats, err := loader.LoadDir(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		threads, err := loader.BuildThreads(cmd.Context())
		if err != nil {
			return err
		}
		if err := loader.UpdatePeopleStats(cmd.Context()); err != nil {
			return err
		}

		fmt.Printf("Loaded %d messages (%d duplicates skipped) from %d files: %d people, %d attachments, %d threads in %v.\n",
			stats.Messages, stats.Duplicates, stats.Files, stats.People, stats.Attachments, threads, time.Since(start))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
