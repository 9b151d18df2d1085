// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Backend names a spreadsheet host.
type Backend string

const (
	// BackendSheets drives a Google Sheets spreadsheet through the Sheets API.
	BackendSheets Backend = "sheets"
	// BackendXLSX drives a local .xlsx workbook file.
	BackendXLSX Backend = "xlsx"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "hiring_hub.toml"

// Config holds everything needed to reach the workbook. None of it changes
// the layout itself; that lives in the layout package.
type Config struct {
	Backend         Backend `validate:"required,oneof=sheets xlsx"`
	SpreadsheetID   string  `validate:"required_if=Backend sheets"`
	CredentialsPath string  `validate:"required_if=Backend sheets"`
	XLSXPath        string  `validate:"required_if=Backend xlsx"`
	LayoutPath      string
	Timeout         time.Duration `validate:"gte=0"`
	Verbose         bool
}

// fileConfig mirrors the TOML file; only keys present in the file override
// defaults.
type fileConfig struct {
	Backend         string `toml:"backend"`
	SpreadsheetID   string `toml:"spreadsheet_id"`
	CredentialsPath string `toml:"credentials_path"`
	XLSXPath        string `toml:"xlsx_path"`
	LayoutPath      string `toml:"layout_path"`
	Timeout         string `toml:"timeout"`
	Verbose         bool   `toml:"verbose"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Backend:         BackendSheets,
		CredentialsPath: "credentials.json",
		Timeout:         5 * time.Minute,
	}
}

// LoadFile loads a TOML config file over Default.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("config path is empty")
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, &Error{Field: undecoded[0].String(), Message: "unknown config key"}
	}

	if meta.IsDefined("backend") {
		cfg.Backend = Backend(strings.ToLower(strings.TrimSpace(raw.Backend)))
	}
	if meta.IsDefined("spreadsheet_id") {
		cfg.SpreadsheetID = strings.TrimSpace(raw.SpreadsheetID)
	}
	if meta.IsDefined("credentials_path") {
		cfg.CredentialsPath = strings.TrimSpace(raw.CredentialsPath)
	}
	if meta.IsDefined("xlsx_path") {
		cfg.XLSXPath = strings.TrimSpace(raw.XLSXPath)
	}
	if meta.IsDefined("layout_path") {
		cfg.LayoutPath = strings.TrimSpace(raw.LayoutPath)
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return Config{}, &Error{Field: "timeout", Message: "invalid duration", Cause: err}
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("verbose") {
		cfg.Verbose = raw.Verbose
	}

	return cfg, nil
}

// Load reads the config file at path when it exists. A missing file is only
// an error when required is set; otherwise defaults are returned.
func Load(path string, required bool) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return Config{}, &Error{Message: fmt.Sprintf("cannot access config file %s", path), Cause: err}
		}
		if !required {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config file not found: %s", path)
	}
	return LoadFile(path)
}

// Environment variables read by ApplyEnv
const (
	EnvBackend         = "HIRING_HUB_BACKEND"
	EnvSpreadsheetID   = "HIRING_HUB_SPREADSHEET_ID"
	EnvCredentialsPath = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvXLSXPath        = "HIRING_HUB_XLSX_PATH"
	EnvLayoutPath      = "HIRING_HUB_LAYOUT"
	EnvTimeout         = "HIRING_HUB_TIMEOUT"
	EnvVerbose         = "HIRING_HUB_VERBOSE"
)

// ApplyEnv overrides fields from non-empty environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvBackend)); v != "" {
		c.Backend = Backend(strings.ToLower(v))
	}
	if v := strings.TrimSpace(getenv(EnvSpreadsheetID)); v != "" {
		c.SpreadsheetID = v
	}
	if v := strings.TrimSpace(getenv(EnvCredentialsPath)); v != "" {
		c.CredentialsPath = v
	}
	if v := strings.TrimSpace(getenv(EnvXLSXPath)); v != "" {
		c.XLSXPath = v
	}
	if v := strings.TrimSpace(getenv(EnvLayoutPath)); v != "" {
		c.LayoutPath = v
	}
	if v := strings.TrimSpace(getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &Error{Field: EnvTimeout, Message: "invalid duration", Cause: err}
		}
		c.Timeout = d
	}
	if v := strings.TrimSpace(getenv(EnvVerbose)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &Error{Field: EnvVerbose, Message: "invalid boolean", Cause: err}
		}
		c.Verbose = b
	}
	return nil
}

var validate = validator.New()

// Validate checks that the configuration can reach a workbook.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &Error{Message: "invalid configuration", Cause: err}
	}

	fe := fieldErrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "required_if":
		msg = fmt.Sprintf("required for backend %q", c.Backend)
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		msg = "must be non-negative"
	default:
		msg = fmt.Sprintf("failed %q check", fe.Tag())
	}
	return &Error{Field: fieldKey(fe.StructField()), Message: msg}
}

// fieldKey maps a struct field to its config file key.
func fieldKey(field string) string {
	switch field {
	case "Backend":
		return "backend"
	case "SpreadsheetID":
		return "spreadsheet_id"
	case "CredentialsPath":
		return "credentials_path"
	case "XLSXPath":
		return "xlsx_path"
	case "LayoutPath":
		return "layout_path"
	case "Timeout":
		return "timeout"
	default:
		return field
	}
}
