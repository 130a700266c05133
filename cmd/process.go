// =============================================================================
// X9 Check Image Validator - Process Command
// =============================================================================
//
// This file defines the 'process' command, which validates every X9 file in
// the input directory in one run.
//
// COMMAND USAGE:
//   x9tool process [flags]
//
// FLAGS:
//   --dry-run     : Validate only; write no reports and archive nothing
//   --extract     : Also extract check images into the output directory
//   --concurrency : Override max_concurrency from the configuration
//   --pattern     : Input file patterns (default *.x9, *.icl, *.dat)
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Discover X9 files in the input directory
//   3. For each file (concurrently, bounded by max_concurrency):
//      a. Read the file
//      b. Reconcile its control records
//      c. Extract images (optional)
//      d. Write a validation report
//      e. Archive the file when it validated clean
//   4. Write the batch summary
//
// =============================================================================

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/x9-check-image-validator/internal/pipeline"
	"github.com/ginjaninja78/x9-check-image-validator/internal/report"
	"github.com/ginjaninja78/x9-check-image-validator/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun validates without writing reports or archiving.
var dryRun bool

// extractImages writes check images for every reconciled file.
var extractImages bool

// concurrency overrides max_concurrency when positive.
var concurrency int

// patterns overrides the input file patterns.
var patterns []string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Validate every X9 file in the input directory",
	Long:  `The process command scans the input directory for X9 files and validates
them concurrently. Each file is processed independently, and errors in one file
do not affect the processing of others.

For every file:
  - A validation report is placed in the reports directory
  - A clean file is moved to the input archive (when archive_on_success is set)
  - A file with findings, or a malformed file, stays in the input directory

A batch summary is written to the reports directory at the end of the run.
The exit code is the worst outcome of any file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Validate only; write no reports and archive nothing",
	)

	processCmd.Flags().BoolVar(
		&extractImages,
		"extract",
		false,
		"Also extract check images into the output directory",
	)

	processCmd.Flags().IntVar(
		&concurrency,
		"concurrency",
		0,
		"Number of files processed at once (default from max_concurrency)",
	)

	processCmd.Flags().StringSliceVar(
		&patterns,
		"pattern",
		nil,
		"Input file patterns (default *.x9, *.icl, *.dat)",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()
	cfg := app.cfg

	fm := utils.NewFileManager(cfg.InputDir, cfg.InputArchiveDir, cfg.ReportsDir, cfg.ArchiveOnSuccess && !dryRun)
	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			printError(out, "Error: %v", err)
			return exitWith(exitError)
		}
	}

	inputFiles, err := fm.DiscoverInputFiles(patterns...)
	if err != nil {
		printError(out, "Error: %v", err)
		return exitWith(exitError)
	}
	if len(inputFiles) == 0 {
		printInfo(out, "No X9 files found in %s", cfg.InputDir)
		return nil
	}

	workers := cfg.MaxConcurrency
	if concurrency > 0 {
		workers = concurrency
	}
	printInfo(out, "Found %d file(s) to process (%d at a time)", len(inputFiles), workers)

	p := &pipeline.Processor{
		Files:            fm,
		ReportNameFormat: cfg.ReportNameFormat,
		RunID:            app.runID,
		Logger:           app.logger,
	}
	if !dryRun {
		p.ReportsDir = cfg.ReportsDir
	}
	if extractImages {
		p.ImagesDir = cfg.OutputDir
	}

	results := p.RunBatch(cmd.Context(), inputFiles, workers)

	worst := pipeline.StatusPassed
	for _, r := range results {
		name := displayName(r.FilePath)
		switch r.Status {
		case pipeline.StatusPassed:
			printSuccess(out, "  ✓ %s", name)
		case pipeline.StatusFindings:
			printWarn(out, "  ✗ %s: %d issue(s)", name, len(r.Validation.Findings))
		default:
			printError(out, "  ✗ %s: %v", name, r.Err)
		}
		if r.Status > worst {
			worst = r.Status
		}
	}

	summary := pipeline.Summarize(app.runID, startTime, time.Now(), results)

	printInfo(out, "\n=== Processing Complete ===")
	printInfo(out, "Total files:     %d", len(summary.Files))
	printInfo(out, "Passed:          %d", summary.Count(report.OutcomePassed))
	printInfo(out, "With findings:   %d", summary.Count(report.OutcomeFindings))
	printInfo(out, "Malformed:       %d", summary.Count(report.OutcomeMalformed))
	printInfo(out, "Errors:          %d", summary.Count(report.OutcomeError))
	printInfo(out, "Time elapsed:    %s", summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond))

	if !dryRun {
		path, err := report.WriteBatchSummary(summary, cfg.ReportsDir)
		if err != nil {
			printError(out, "Error: %v", err)
			return exitWith(exitError)
		}
		printInfo(out, "Summary written: %s", path)
	}

	app.logger.Info().
		Int("files", len(results)).
		Str("worst", worst.String()).
		Dur("elapsed", time.Since(startTime)).
		Msg("batch complete")

	return exitWith(worst.ExitCode())
}
