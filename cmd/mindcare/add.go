package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <memory>",
	Short: "Remember something",
	Long: `Store a memory in your own words.

Examples:
  mindcare add "I parked my car in the garage"
  mindcare add I left my keys on the kitchen table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	rec, err := mem.AddMemory(context.Background(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Memory added successfully (id %s)\n", rec.ID)
	return nil
}
