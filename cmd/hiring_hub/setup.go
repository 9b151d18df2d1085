package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-hub/internal/config"
	"github.com/jonathan/hiring-hub/internal/gsheets"
	"github.com/jonathan/hiring-hub/internal/layout"
	"github.com/jonathan/hiring-hub/internal/observability"
	"github.com/jonathan/hiring-hub/internal/workbook"
	"github.com/jonathan/hiring-hub/internal/xlsx"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create or repair the spreadsheet layout",
	Long:  "Ensures the data sheet headers, pipeline dropdown, column formats, timezone and automation log sheet. Safe to run repeatedly.",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

var (
	setupConfigPath    string
	setupBackend       string
	setupSpreadsheetID string
	setupCredentials   string
	setupXLSXPath      string
	setupLayoutPath    string
	setupTimeout       time.Duration
	setupDryRun        bool
	setupVerbose       bool
)

func init() {
	setupCmd.Flags().StringVarP(&setupConfigPath, "config", "c", config.DefaultPath, "Path to TOML config file")
	setupCmd.Flags().StringVarP(&setupBackend, "backend", "b", "", "Spreadsheet host: sheets or xlsx")
	setupCmd.Flags().StringVar(&setupSpreadsheetID, "spreadsheet-id", "", "Google Sheets spreadsheet ID")
	setupCmd.Flags().StringVar(&setupCredentials, "credentials", "", "Path to Google credentials JSON file")
	setupCmd.Flags().StringVar(&setupXLSXPath, "xlsx", "", "Path to .xlsx workbook (created if missing)")
	setupCmd.Flags().StringVarP(&setupLayoutPath, "layout", "l", "", "Path to layout override JSON file")
	setupCmd.Flags().DurationVar(&setupTimeout, "timeout", 0, "Abort the run after this long (0 uses the config value)")
	setupCmd.Flags().BoolVar(&setupDryRun, "dry-run", false, "Print planned changes without writing them")
	setupCmd.Flags().BoolVarP(&setupVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(setupCmd)
}

// resolveConfig layers the config file, environment and flags, in that order.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(setupConfigPath, cmd.Flags().Changed("config"))
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = config.Backend(setupBackend)
	}
	if flags.Changed("spreadsheet-id") {
		cfg.SpreadsheetID = setupSpreadsheetID
	}
	if flags.Changed("credentials") {
		cfg.CredentialsPath = setupCredentials
	}
	if flags.Changed("xlsx") {
		cfg.XLSXPath = setupXLSXPath
		if !flags.Changed("backend") {
			cfg.Backend = config.BackendXLSX
		}
	}
	if flags.Changed("layout") {
		cfg.LayoutPath = setupLayoutPath
	}
	if flags.Changed("timeout") {
		cfg.Timeout = setupTimeout
	}
	if flags.Changed("verbose") {
		cfg.Verbose = setupVerbose
	}

	return cfg, cfg.Validate()
}

func loadLayout(path string) (layout.Layout, error) {
	if path == "" {
		return layout.Default(), nil
	}
	return layout.LoadFile(path)
}

// openWorkbook connects to the configured host. The returned close func is
// never nil.
func openWorkbook(ctx context.Context, cfg config.Config, logger zerolog.Logger) (workbook.Workbook, func(), error) {
	switch cfg.Backend {
	case config.BackendSheets:
		c, err := gsheets.NewClientFromCredentials(ctx, cfg.SpreadsheetID, cfg.CredentialsPath, logger)
		if err != nil {
			return nil, func() {}, err
		}
		return c, func() {}, nil
	case config.BackendXLSX:
		wb, err := xlsx.Open(cfg.XLSXPath, logger)
		if err != nil {
			return nil, func() {}, err
		}
		return wb, func() { _ = wb.Close() }, nil
	default:
		return nil, func() {}, fmt.Errorf("unsupported backend %q", cfg.Backend)
	}
}

func runSetup(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	runID := uuid.New()
	logger := observability.InitLogger(appName, cmd.ErrOrStderr(), cfg.Verbose).
		With().Str("run_id", runID.String()).Logger()

	l, err := loadLayout(cfg.LayoutPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	host, closeHost, err := openWorkbook(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer closeHost()

	target := host
	var plan *workbook.DryRunWorkbook
	if setupDryRun {
		plan = workbook.DryRun(host)
		target = plan
	}

	logger.Info().
		Str("backend", string(cfg.Backend)).
		Bool("dry_run", setupDryRun).
		Msg("starting layout setup")

	report, err := layout.New(l, logger).WithRunID(runID).Run(ctx, target)
	if err != nil {
		var stepErr *layout.StepError
		if errors.As(err, &stepErr) {
			logger.Error().Err(stepErr.Cause).Str("step", string(stepErr.Step)).Msg("layout setup aborted")
		}
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintReport(report)
	if plan != nil {
		printer.PrintPlan(plan.Planned())
	}
	return nil
}
