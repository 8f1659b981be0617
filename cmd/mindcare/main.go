// Command mindcare stores short personal memories and answers questions
// about them.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env; real environment variables win.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	teardown() // PersistentPostRun is skipped when a command fails
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
