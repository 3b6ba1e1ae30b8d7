// Package cmd implements the mailcorpus CLI.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/agentic-research/mailcorpus/internal/attachments"
	"github.com/agentic-research/mailcorpus/internal/cache"
	"github.com/agentic-research/mailcorpus/internal/config"
	"github.com/agentic-research/mailcorpus/internal/store"
	"github.com/agentic-research/mailcorpus/internal/threads"
	"github.com/agentic-research/mailcorpus/internal/views"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mailcorpus",
	Short: "Derived views over an email archive corpus",
	Long: `mailcorpus serves derived, cached views over a corpus SQLite database:
the social graph, per-person ego graphs, thread reply trees, and paginated
deduplicated conversations.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "mailcorpus.hcl", "Path to HCL config file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newService builds the full read stack from the config file. The returned
// cleanup closes the store and, when configured, the persistent cache.
func newService() (*views.Service, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	st, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){func() { _ = st.Close() }}

	var backing cache.Store
	if cfg.Cache.Path != "" {
		sq, err := cache.OpenSQLiteStore(cfg.Cache.Path)
		if err != nil {
			_ = st.Close() // ignore error
			return nil, nil, err
		}
		closers = append(closers, func() { _ = sq.Close() })
		backing = sq
	} else {
		backing = cache.NewMemoryStore(cache.WithMaxEntries(cfg.Cache.MaxEntries))
	}

	svc := views.NewService(
		cache.NewController(backing, logger),
		st,
		threads.NewPageBuilder(st, attachments.NewMatcher(st)),
		views.Options{
			TTL:        cfg.Cache.TTL(),
			TreeLimit:  cfg.Limits.TreeMessages,
			PageSize:   cfg.Limits.PageSize,
			GraphNodes: cfg.Limits.GraphNodes,
		},
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return svc, cleanup, nil
}

// printJSON writes the view payload as indented JSON to stdout.
func printJSON(v any) {
	fmt.Println(oj.JSON(v, 2))
}
