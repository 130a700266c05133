// =============================================================================
// X9 Check Image Validator - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration.
//
// SOURCES (later sources win):
//   1. Built-in defaults
//   2. Main config file (config.yaml)
//   3. .env file in the working directory (loaded with godotenv)
//   4. X9_* environment variables
//
// A missing config file at the default path is not an error; the tool then
// runs on defaults. A config file that was named explicitly must exist.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file used when none is given.
const DefaultPath = "config.yaml"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned by the process command for X9 files.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// InputArchiveDir receives input files that validated cleanly, when
	// ArchiveOnSuccess is set.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputDir receives extracted check images when the process command runs
	// with --extract, one subdirectory per input file.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ReportsDir receives validation reports and batch summaries.
	// Default: "./reports"
	ReportsDir string `yaml:"reports_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional file that receives JSON log lines in addition
	// to stderr. Empty disables the file.
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "trace", "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "console" or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// ReportNameFormat defines validation report file names.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {original}  - Input file name without extension
	//
	// Default: "{original}_{timestamp}_{uuid}.txt"
	ReportNameFormat string `yaml:"report_name_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files validated at once by the
	// process command. Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ArchiveOnSuccess moves cleanly validated input files to
	// InputArchiveDir.
	// Default: false
	ArchiveOnSuccess bool `yaml:"archive_on_success"`

	// =========================================================================
	// INTEGRATIONS
	// =========================================================================

	SMTP      SMTPConfig      `yaml:"smtp"`
	Customers CustomersConfig `yaml:"customers"`
	Email     EmailConfig     `yaml:"email"`
}

// SMTPConfig holds the mail server settings for confirmation emails.
type SMTPConfig struct {
	// Host of the SMTP server.
	// Default: "localhost"
	Host string `yaml:"host"`

	// Port of the SMTP server.
	// Default: 25
	Port int `yaml:"port"`

	// Username and Password enable SMTP AUTH when Username is set.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// From is the sender address.
	From string `yaml:"from"`

	// TLSPolicy is "mandatory", "opportunistic" or "none".
	// Default: "opportunistic"
	TLSPolicy string `yaml:"tls_policy"`

	// TimeoutSeconds bounds connecting and sending.
	// Default: 30
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// CustomersConfig selects the customer directory used to find the contact
// address for a file's originator.
type CustomersConfig struct {
	// Driver is "sqlite", "postgres", "xlsx" or "csv".
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// DSN is the database connection string, or the file path for xlsx and
	// csv.
	// Default: "./customers.db"
	DSN string `yaml:"dsn"`

	// Table is the SQL table holding customers.
	// Default: "confirms"
	Table string `yaml:"table"`

	// Sheet is the workbook sheet for the xlsx driver. Empty means the
	// first sheet.
	Sheet string `yaml:"sheet"`

	// NameColumn and EmailColumn name the customer name and contact email
	// columns (SQL columns, or header cells for xlsx and csv).
	// Defaults: "long_name", "contact_email"
	NameColumn  string `yaml:"name_column"`
	EmailColumn string `yaml:"email_column"`
}

// EmailConfig controls the confirmation email content.
type EmailConfig struct {
	// SubjectFormat is the subject line; {file} is replaced by the file name.
	// Default: "Deposit Received: {file}"
	SubjectFormat string `yaml:"subject_format"`

	// TemplatePath overrides the built-in HTML template.
	TemplatePath string `yaml:"template_path"`

	// BCC receives a blind copy of every confirmation.
	BCC []string `yaml:"bcc"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file. Empty means
//     DefaultPath, which may be absent.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed, or the result is
//     invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	optional := configPath == ""
	if optional {
		configPath = DefaultPath
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	if err := applyEnvOverrides(&config); err != nil {
		return nil, err
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// applyEnvOverrides copies X9_* environment variables over file values.
func applyEnvOverrides(config *MainConfig) error {
	strs := map[string]*string{
		"X9_SMTP_HOST":        &config.SMTP.Host,
		"X9_SMTP_USERNAME":    &config.SMTP.Username,
		"X9_SMTP_PASSWORD":    &config.SMTP.Password,
		"X9_SMTP_FROM":        &config.SMTP.From,
		"X9_CUSTOMERS_DRIVER": &config.Customers.Driver,
		"X9_CUSTOMERS_DSN":    &config.Customers.DSN,
		"X9_LOG_LEVEL":        &config.LogLevel,
		"X9_LOG_FORMAT":       &config.LogFormat,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("X9_SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid X9_SMTP_PORT %q: %w", v, err)
		}
		config.SMTP.Port = port
	}
	return nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.ReportsDir == "" {
		config.ReportsDir = "./reports"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
	if config.ReportNameFormat == "" {
		config.ReportNameFormat = "{original}_{timestamp}_{uuid}.txt"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}

	if config.SMTP.Host == "" {
		config.SMTP.Host = "localhost"
	}
	if config.SMTP.Port == 0 {
		config.SMTP.Port = 25
	}
	if config.SMTP.TLSPolicy == "" {
		config.SMTP.TLSPolicy = "opportunistic"
	}
	if config.SMTP.TimeoutSeconds == 0 {
		config.SMTP.TimeoutSeconds = 30
	}

	if config.Customers.Driver == "" {
		config.Customers.Driver = "sqlite"
	}
	if config.Customers.DSN == "" {
		config.Customers.DSN = "./customers.db"
	}
	if config.Customers.Table == "" {
		config.Customers.Table = "confirms"
	}
	if config.Customers.NameColumn == "" {
		config.Customers.NameColumn = "long_name"
	}
	if config.Customers.EmailColumn == "" {
		config.Customers.EmailColumn = "contact_email"
	}

	if config.Email.SubjectFormat == "" {
		config.Email.SubjectFormat = "Deposit Received: {file}"
	}
}

// validateMainConfig checks enumerated settings. Directories are created
// by the commands that write to them.
func validateMainConfig(config *MainConfig) error {
	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}
	if !oneOf(config.LogFormat, "console", "json") {
		return fmt.Errorf("log_format must be console or json, got %q", config.LogFormat)
	}
	if !oneOf(config.SMTP.TLSPolicy, "mandatory", "opportunistic", "none") {
		return fmt.Errorf("smtp.tls_policy must be mandatory, opportunistic or none, got %q", config.SMTP.TLSPolicy)
	}
	if !oneOf(config.Customers.Driver, "sqlite", "postgres", "xlsx", "csv") {
		return fmt.Errorf("customers.driver must be sqlite, postgres, xlsx or csv, got %q", config.Customers.Driver)
	}
	if config.SMTP.Port < 1 || config.SMTP.Port > 65535 {
		return fmt.Errorf("smtp.port out of range: %d", config.SMTP.Port)
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}
