// =============================================================================
// X9 Check Image Validator - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   x9tool validate [file] [flags]
//
// FLAGS:
//   --report : Also write a text report into the reports directory
//
// OUTPUT:
//   Starting: Validating x9File deposit.x9 ...
//   Completed: Validation succeeded deposit.x9
//
//   or, when control records disagree, each finding followed by
//   Error: deposit.x9 validation failed (2 issue(s))
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/x9-check-image-validator/internal/pipeline"
)

// writeReport writes a validation report file.
var writeReport bool

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Reconcile the control records of an X9 file",
	Long:  `The validate command reads an X9 file and checks every bundle, cash letter
and file control record against the items it summarises. Each discrepancy is
printed. The exit code is 0 when the file is clean, 1 when there are findings,
2 when the file is malformed and 3 when it cannot be read.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := x9Path(args)
		if err != nil {
			return err
		}
		return runValidate(cmd, path)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(
		&writeReport,
		"report",
		false,
		"Write a validation report into the reports directory",
	)
}

func runValidate(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()
	name := displayName(path)

	printInfo(out, "Starting: Validating x9File %s ...", path)

	p := &pipeline.Processor{
		ReportNameFormat: app.cfg.ReportNameFormat,
		RunID:            app.runID,
		Logger:           app.logger,
	}
	if writeReport {
		p.ReportsDir = app.cfg.ReportsDir
	}

	result := p.Run(cmd.Context(), path)

	switch result.Status {
	case pipeline.StatusPassed:
		printSuccess(out, "Completed: Validation succeeded %s", path)
	case pipeline.StatusFindings:
		printFindings(out, result.Validation)
		printError(out, "Error: %s validation failed (%d issue(s))", name, len(result.Validation.Findings))
	default:
		printError(out, "Error: cannot validate %s: %v", name, result.Err)
		return exitWith(result.Status.ExitCode())
	}

	if result.ReportPath != "" {
		printInfo(out, "Report written: %s", result.ReportPath)
	} else if writeReport && result.Err != nil {
		printError(out, "Error: cannot write report for %s: %v", name, result.Err)
		return exitWith(exitError)
	}

	return exitWith(result.Status.ExitCode())
}
