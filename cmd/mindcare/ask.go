package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askExplain bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask about something you remembered",
	Long: `Answer a question from stored memories.

Questions mentioning "before", "earlier", "previously", "history", "initially"
or "past" list how things changed; everything else gets the latest memory.

Examples:
  mindcare ask "where is my car now"
  mindcare ask where was my car before`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askExplain, "explain", false, "show the memories behind the answer")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := strings.Join(args, " ")

	if _, err := mem.Warm(ctx); err != nil {
		return fmt.Errorf("load memories: %w", err)
	}

	answer, err := mem.Interpret(ctx, query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, answer.Text)

	if askExplain {
		fmt.Fprintf(out, "\nintent: %s\n", answer.Intent)
		if answer.Object != "" {
			fmt.Fprintf(out, "object: %s\n", answer.Object)
		}
		for _, r := range answer.Records {
			fmt.Fprintf(out, "  [%s] %s  %s\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Text)
		}
	}
	return nil
}
