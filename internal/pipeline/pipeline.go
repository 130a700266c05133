// =============================================================================
// X9 Check Image Validator - Processing Pipeline
// =============================================================================
//
// This module runs the per-file pipeline used by the validate and process
// commands:
//   1. Read the X9 file into a Document
//   2. Reconcile its control records
//   3. Extract check images (optional)
//   4. Write a validation report (optional)
//   5. Archive the input file when it validated clean (optional)
//
// CONCURRENCY:
//   RunBatch processes files on a bounded pool of workers. Every file gets
//   its own reader, Document and ValidationResult; the only shared state is
//   the Processor's configuration, which is read-only during a run.
//
// =============================================================================

package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/x9-check-image-validator/internal/convert"
	"github.com/ginjaninja78/x9-check-image-validator/internal/images"
	"github.com/ginjaninja78/x9-check-image-validator/internal/report"
	"github.com/ginjaninja78/x9-check-image-validator/internal/validation"
	"github.com/ginjaninja78/x9-check-image-validator/internal/x9reader"
	"github.com/ginjaninja78/x9-check-image-validator/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Status classifies the outcome of processing one file.
type Status int

const (
	// StatusPassed means the file validated without findings.
	StatusPassed Status = iota
	// StatusFindings means the file was read but its controls disagree.
	StatusFindings
	// StatusMalformed means the file could not be decoded or lacks required
	// records.
	StatusMalformed
	// StatusError covers I/O and everything else.
	StatusError
)

// String returns the outcome name used in batch summaries.
func (s Status) String() string {
	switch s {
	case StatusPassed:
		return report.OutcomePassed
	case StatusFindings:
		return report.OutcomeFindings
	case StatusMalformed:
		return report.OutcomeMalformed
	default:
		return report.OutcomeError
	}
}

// ExitCode maps the status to the process exit code.
func (s Status) ExitCode() int {
	return int(s)
}

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Status classifies the outcome.
	Status Status

	// Validation is nil when the file could not be read or reconciled.
	Validation *validation.ValidationResult

	// Images is the number of image files extracted.
	Images int

	// ReportPath is set when a report was written.
	ReportPath string

	// ArchivePath is set when the input file was archived.
	ArchivePath string

	// Err is set for StatusMalformed and StatusError, and for failures
	// writing the report or archiving.
	Err error

	// Duration is the time taken to process the file.
	Duration time.Duration
}

// Classify maps an error from reading or validating a file to a Status.
func Classify(err error) Status {
	if err == nil {
		return StatusPassed
	}

	var (
		malformed  *validation.MalformedFileError
		record     *x9reader.RecordError
		conversion *convert.ConversionError
	)
	switch {
	case errors.As(err, &malformed),
		errors.As(err, &record),
		errors.As(err, &conversion),
		errors.Is(err, x9reader.ErrNotX9):
		return StatusMalformed
	default:
		return StatusError
	}
}

// =============================================================================
// PROCESSOR
// =============================================================================

// Processor runs the pipeline for individual files.
type Processor struct {
	// Validator reconciles documents. Nil means a default validator.
	Validator *validation.Validator

	// Files archives passing input files. Nil disables archival.
	Files *utils.FileManager

	// ReportsDir enables validation reports when non-empty.
	ReportsDir string

	// ReportNameFormat is passed to report.WriteValidationReport.
	ReportNameFormat string

	// ImagesDir enables image extraction for files that could be reconciled.
	// Each file's images go to a subdirectory named after the file.
	ImagesDir string

	// RunID is written into reports.
	RunID string

	// ReaderOptions are passed to the X9 reader for every file.
	ReaderOptions []x9reader.Option

	Logger zerolog.Logger
}

// Run processes one file. It never panics on bad input; all failures are
// reported through the Result.
func (p *Processor) Run(ctx context.Context, path string) (result Result) {
	start := time.Now()
	logger := p.Logger.With().Str("file", path).Logger()

	result = Result{FilePath: path}
	defer func() { result.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		result.Status, result.Err = StatusError, err
		return result
	}

	opts := append([]x9reader.Option{x9reader.WithLogger(logger)}, p.ReaderOptions...)
	doc, err := x9reader.ReadFile(path, opts...)
	if err != nil {
		result.Status, result.Err = Classify(err), err
		logger.Error().Err(err).Str("status", result.Status.String()).Msg("cannot read file")
		return result
	}

	validator := p.Validator
	if validator == nil {
		validator = validation.NewValidator(validation.WithLogger(logger))
	}
	vr, err := validator.Validate(doc)
	if err != nil {
		result.Status, result.Err = Classify(err), err
		logger.Error().Err(err).Str("status", result.Status.String()).Msg("cannot validate file")
		return result
	}
	result.Validation = vr

	if vr.Status {
		result.Status = StatusPassed
		logger.Info().Msg("validation succeeded")
	} else {
		result.Status = StatusFindings
		logger.Warn().
			Int("hard", vr.Count(validation.SeverityHard)).
			Int("soft", vr.Count(validation.SeveritySoft)).
			Msg("validation failed")
	}

	if p.ImagesDir != "" {
		dir := filepath.Join(p.ImagesDir, utils.BaseName(path))
		n, err := (&images.Writer{Logger: logger}).WriteAll(doc, dir)
		if err != nil {
			result.Err = err
			logger.Error().Err(err).Msg("cannot extract images")
		} else {
			result.Images = n
		}
	}

	if p.ReportsDir != "" {
		meta := report.Meta{FilePath: path, RunID: p.RunID}
		reportPath, err := report.WriteValidationReport(vr, meta, p.ReportsDir, p.ReportNameFormat)
		if err != nil {
			result.Err = err
			logger.Error().Err(err).Msg("cannot write validation report")
		} else {
			result.ReportPath = reportPath
			logger.Debug().Str("report", reportPath).Msg("validation report written")
		}
	}

	if result.Status == StatusPassed && p.Files != nil && p.Files.ArchiveOnSuccess {
		archived, err := p.Files.ArchiveInputFile(path)
		if err != nil {
			result.Err = err
			logger.Error().Err(err).Msg("cannot archive file")
		} else {
			result.ArchivePath = archived
			logger.Info().Str("archive", archived).Msg("file archived")
		}
	}

	return result
}

// =============================================================================
// BATCH PROCESSING
// =============================================================================

// RunBatch processes paths with at most concurrency files in flight.
// Results are returned in the order of paths. Once ctx is done, files not
// yet started are reported with the context error.
func (p *Processor) RunBatch(ctx context.Context, paths []string, concurrency int) []Result {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < concurrency && w < len(paths); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.Run(ctx, paths[i])
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// Summarize converts batch results into a report.BatchSummary.
func Summarize(runID string, start, end time.Time, results []Result) *report.BatchSummary {
	summary := &report.BatchSummary{
		RunID:     runID,
		StartTime: start,
		EndTime:   end,
	}
	for _, r := range results {
		entry := report.FileEntry{
			InputFile:   r.FilePath,
			Outcome:     r.Status.String(),
			ReportPath:  r.ReportPath,
			ArchivePath: r.ArchivePath,
			Duration:    r.Duration,
		}
		if r.Validation != nil {
			entry.Findings = len(r.Validation.Findings)
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		summary.Files = append(summary.Files, entry)
	}
	return summary
}
