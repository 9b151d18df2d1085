// Package main provides the hiring_hub CLI, which prepares a recruiting
// spreadsheet for the hiring automation.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const appName = "hiring_hub"

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Hiring Hub spreadsheet tooling",
	Long:  "Hiring Hub prepares the recruiting spreadsheet: required headers, pipeline dropdown, column formats and the automation log sheet.",
	// Errors are printed once by main.
	SilenceErrors: true,
	SilenceUsage:  true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
