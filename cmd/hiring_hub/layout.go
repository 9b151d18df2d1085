package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/hiring-hub/internal/config"
	"github.com/spf13/cobra"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the effective layout as JSON",
	Long:  "Prints the built-in layout, or the layout after applying an override file, in the override file format.",
	Args:  cobra.NoArgs,
	RunE:  runLayout,
}

var layoutPath string

func init() {
	layoutCmd.Flags().StringVarP(&layoutPath, "layout", "l", "", "Path to layout override JSON file (default $HIRING_HUB_LAYOUT)")

	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, _ []string) error {
	path := layoutPath
	if path == "" {
		path = os.Getenv(config.EnvLayoutPath)
	}
	l, err := loadLayout(path)
	if err != nil {
		return err
	}

	jsonBytes, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal layout to JSON: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
	return nil
}
