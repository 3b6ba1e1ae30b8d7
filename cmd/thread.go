package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
)

var messagesPage int

var threadCmd = &cobra.Command{
	Use:   "thread [thread-id]",
	Short: "Print a thread's reply tree as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		threadID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		svc, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		view, err := svc.ThreadTree(cmd.Context(), threadID)
		if err != nil {
			return err
		}
		printJSON(view)
		return nil
	},
}

var messagesCmd = &cobra.Command{
	Use:   "messages [thread-id]",
	Short: "Print one deduplicated page of a thread as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		threadID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		svc, cleanup, err := newService()
		if err != nil {
			return err
		}
		defer cleanup()

		page, err := svc.ThreadMessages(cmd.Context(), threadID, messagesPage)
		if err != nil {
			return err
		}
		printJSON(page)
		return nil
	},
}

func init() {
	messagesCmd.Flags().IntVar(&messagesPage, "page", 1, "1-based page number")
	rootCmd.AddCommand(threadCmd)
	rootCmd.AddCommand(messagesCmd)
}
