// =============================================================================
// X9 Check Image Validator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (x9tool)
//   ├── validateCmd      (x9tool validate)
//   ├── extractCmd       (x9tool extract)
//   ├── emailConfirmCmd  (x9tool email-confirm)
//   ├── processCmd       (x9tool process)
//   ├── reportCmd        (x9tool report)
//   └── versionCmd       (x9tool version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (e.g., --config, --verbose)
//   2. Loading the configuration file and environment overrides
//   3. Setting up logging with a per-invocation run ID
//
// EXIT CODES:
//   0 success, 1 validation findings, 2 malformed file, 3 I/O or other error
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/x9-check-image-validator/internal/config"
	"github.com/ginjaninja78/x9-check-image-validator/internal/logging"
	"github.com/ginjaninja78/x9-check-image-validator/internal/pipeline"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file. Empty means the
// optional config.yaml in the current directory.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// noColor disables colored terminal output.
var noColor bool

// x9File is the X9 file to work on when no argument is given.
var x9File string

// app holds what PersistentPreRunE set up for the running command.
var app struct {
	cfg    *config.MainConfig
	logger zerolog.Logger
	runID  string
	closer io.Closer
}

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	exitOK        = 0
	exitFindings  = 1
	exitMalformed = 2
	exitError     = 3
)

// exitCodeError carries a process exit code out of a command. The command has
// already printed whatever the user needs to see.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// exitWith returns nil for a zero code so cobra treats the run as a success.
func exitWith(code int) error {
	if code == exitOK {
		return nil
	}
	return &exitCodeError{code: code}
}

// exitCode maps an error returned by a command to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var exit *exitCodeError
	if errors.As(err, &exit) {
		return exit.code
	}
	return pipeline.Classify(err).ExitCode()
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "x9tool",
	Short: "X9 Check Image Validator - Reconcile and process X9.100-187 deposit files",
	Long:  `x9tool reads X9.100-187 check image files, reconciles every control
record against the items it summarises, and reports each discrepancy.

Key Features:
  - Bundle, cash letter and file control reconciliation
  - ASCII and EBCDIC files, length-prefixed or line-delimited
  - Check image extraction
  - Deposit confirmation emails and XLSX deposit summaries
  - Concurrent batch processing with archival of clean files

Example Usage:
  x9tool validate deposit.x9           # Validate a single file
  x9tool validate -f deposit.x9 --report
  x9tool extract deposit.x9 -o images  # Write check images to ./images
  x9tool process                       # Validate every file in the input directory`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and runs it. It exits
// the process with the code the command produced.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if app.closer != nil {
		app.closer.Close()
	}

	code := exitCode(err)
	var exit *exitCodeError
	if err != nil && !errors.As(err, &exit) {
		printError(rootCmd.ErrOrStderr(), "Error: %v", err)
	}
	if code != exitOK {
		os.Exit(code)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the main configuration file (default is config.yaml when present)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentFlags().BoolVar(
		&noColor,
		"no-color",
		false,
		"Disable colored output",
	)

	rootCmd.PersistentFlags().StringVarP(
		&x9File,
		"file",
		"f",
		"",
		"Path to the X9 file (may also be given as an argument)",
	)
}

// setup loads configuration and creates the logger for a command run.
func setup(cmd *cobra.Command) error {
	if noColor {
		color.NoColor = true
	}

	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, closer, err := logging.New(logging.Config{
		Level:  level,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	app.cfg = cfg
	app.closer = closer
	app.logger, app.runID = logging.WithRunID(logger)
	app.logger.Debug().Str("command", cmd.Name()).Msg("starting")
	return nil
}

// x9Path returns the X9 file named by the first argument or --file.
func x9Path(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if x9File != "" {
		return x9File, nil
	}
	return "", errors.New("no X9 file given (pass a path or use --file)")
}

// displayName is how a file is named in one-line status messages.
func displayName(path string) string {
	return filepath.Base(path)
}
