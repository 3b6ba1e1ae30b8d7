package cmd

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print corpus-wide counts as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		stats, err := svc.Stats(cmd.Context())
		if err != nil {
			return err
		}
		printJSON(stats)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
