package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
)

var (
	graphMinEmails int
	graphLimit     int
	egoDepth       int
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the corpus-wide social graph as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		view, err := svc.GlobalGraph(cmd.Context(), graphMinEmails, graphLimit)
		if err != nil {
			return err
		}
		printJSON(view)
		return nil
	},
}

var egoCmd = &cobra.Command{
	Use:   "ego [person-id]",
	Short: "Print one person's communication neighborhood as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		personID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		svc, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		view, err := svc.EgoGraph(cmd.Context(), personID, egoDepth, graphMinEmails)
		if err != nil {
			return err
		}
		printJSON(view)
		return nil
	},
}

func init() {
	graphCmd.Flags().IntVar(&graphMinEmails, "min-emails", 1, "Minimum total email volume per person")
	graphCmd.Flags().IntVar(&graphLimit, "limit", 0, "Node budget (0 uses the configured default)")
	egoCmd.Flags().IntVar(&graphMinEmails, "min-emails", 1, "Minimum total email volume per neighbor")
	egoCmd.Flags().IntVar(&egoDepth, "depth", 1, "Neighborhood depth")
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(egoCmd)
}
