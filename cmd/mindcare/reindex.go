package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Embed every stored memory and report the count",
	Long: `Rebuild the search index from the database. Use it to check that the
embedding backend is reachable and handles every stored memory.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func runReindex(cmd *cobra.Command, args []string) error {
	n, err := mem.Warm(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d memories\n", n)
	return nil
}
