package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// =============================================================================
// BATCH SUMMARY
// =============================================================================

// Outcome names used in batch summaries.
const (
	OutcomePassed    = "passed"
	OutcomeFindings  = "findings"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
)

// BatchSummary contains summary information about a batch run.
type BatchSummary struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	Files     []FileEntry
}

// FileEntry is the outcome of one file in a batch.
type FileEntry struct {
	InputFile   string
	Outcome     string
	Findings    int
	ReportPath  string
	ArchivePath string
	Error       string
	Duration    time.Duration
}

// Count returns the number of files with the given outcome.
func (s *BatchSummary) Count(outcome string) int {
	n := 0
	for _, f := range s.Files {
		if f.Outcome == outcome {
			n++
		}
	}
	return n
}

// WriteBatchSummary writes a batch summary to a text file in dir.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteBatchSummary(summary *BatchSummary, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	end := summary.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	summaryPath := filepath.Join(dir, fmt.Sprintf("batch_summary_%s.txt", end.Format("20060102_150405")))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "X9 Check Image Validator - Batch Summary\n"+
		"%s\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:    %d\n"+
		"  Passed:         %d\n"+
		"  With Findings:  %d\n"+
		"  Malformed:      %d\n"+
		"  Errors:         %d\n\n",
		rule,
		summary.RunID,
		summary.StartTime.Format(timestampLayout),
		end.Format(timestampLayout),
		end.Sub(summary.StartTime).Round(time.Millisecond),
		len(summary.Files),
		summary.Count(OutcomePassed),
		summary.Count(OutcomeFindings),
		summary.Count(OutcomeMalformed),
		summary.Count(OutcomeError))

	if len(summary.Files) > 0 {
		fmt.Fprintf(writer, "Files:\n")
		for _, f := range summary.Files {
			fmt.Fprintf(writer, "  %s [%s]\n", filepath.Base(f.InputFile), f.Outcome)
			if f.Findings > 0 {
				fmt.Fprintf(writer, "    Findings: %d\n", f.Findings)
			}
			if f.Error != "" {
				fmt.Fprintf(writer, "    Error:    %s\n", f.Error)
			}
			if f.ReportPath != "" {
				fmt.Fprintf(writer, "    Report:   %s\n", f.ReportPath)
			}
			if f.ArchivePath != "" {
				fmt.Fprintf(writer, "    Archived: %s\n", f.ArchivePath)
			}
		}
		fmt.Fprintln(writer)
	}

	fmt.Fprintf(writer, "%s\nEnd of Batch Summary\n", rule)

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}
