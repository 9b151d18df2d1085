package main

import (
	"bytes"
	"testing"

	"github.com/jonathan/hiring-hub/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// executeCommand runs the CLI in-process with fresh flag values and returns
// stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	clearEnv(t)

	for _, c := range []*cobra.Command{setupCmd, layoutCmd} {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// clearEnv blanks every variable the config layer reads, so a developer .env
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		config.EnvBackend,
		config.EnvSpreadsheetID,
		config.EnvCredentialsPath,
		config.EnvXLSXPath,
		config.EnvLayoutPath,
		config.EnvTimeout,
		config.EnvVerbose,
	} {
		t.Setenv(k, "")
	}
}
