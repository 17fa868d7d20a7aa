package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/sherpa/internal/store"
)

var attemptsCmd = &cobra.Command{
	Use:   "attempts <session-id>",
	Short: "List the reviewed attempts of a tutorial session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		full, _ := cmd.Flags().GetBool("full")
		sessionID := args[0]
		out := cmd.OutOrStdout()

		return withStore(cmd, func(ctx context.Context, repo store.EventRepo) error {
			events, err := repo.QueryAttemptEvents(ctx, sessionID)
			if err != nil {
				return fmt.Errorf("query attempts: %w", err)
			}
			if len(events) == 0 {
				fmt.Fprintf(out, "No attempts recorded for session %s.\n", sessionID)
				return nil
			}

			fmt.Fprintf(out, "%-19s  %-4s  %-17s  %-11s  %-4s  %s\n",
				"Timestamp", "TODO", "Outcome", "Flag", "Hint", "Feedback")
			rule(out, 100)
			for _, e := range events {
				feedback := strings.Join(strings.Fields(e.Feedback), " ")
				if !full {
					feedback = truncate(feedback, 40)
				}
				fmt.Fprintf(out, "%-19s  %-4d  %-17s  %-11s  %-4d  %s\n",
					e.Timestamp.Local().Format(timeLayout), e.SlotID, e.Outcome, e.Flag, e.HintLevel, feedback)
				if full && e.AttemptText != "" {
					fmt.Fprintln(out, e.AttemptText)
					fmt.Fprintln(out)
				}
			}
			return nil
		})
	},
}

func init() {
	attemptsCmd.Flags().Bool("full", false, "Show full feedback and the submitted code")
}
