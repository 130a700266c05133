// =============================================================================
// X9 Check Image Validator - Report Module
// =============================================================================
//
// This module renders validation outcomes for people:
//   - FormatFindings: console text for a single result
//   - WriteValidationReport: a text report file per validated X9 file
//   - WriteBatchSummary: a text summary of a batch run
//   - WriteDepositWorkbook: the deposit summary as an XLSX workbook
//
// Report file names come from the configured report_name_format. See
// utils.GenerateOutputFileName for the supported placeholders.
//
// =============================================================================

package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/x9-check-image-validator/internal/validation"
	"github.com/ginjaninja78/x9-check-image-validator/pkg/utils"
)

// DefaultNameFormat is used when no report name format is configured.
const DefaultNameFormat = "{original}_{timestamp}_{uuid}.txt"

const (
	rule            = "================================================================================"
	timestampLayout = "2006-01-02 15:04:05"
)

// =============================================================================
// CONSOLE OUTPUT
// =============================================================================

// FormatFindings renders a result as numbered lines tagged with their
// severity. A clean result renders as a single line.
func FormatFindings(result *validation.ValidationResult) string {
	if result == nil || result.Status {
		return "No findings.\n"
	}

	var b strings.Builder
	for i, f := range result.Findings {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, f.Severity, f.Message)
	}
	return b.String()
}

// =============================================================================
// VALIDATION REPORT
// =============================================================================

// Meta describes the run a report belongs to.
type Meta struct {
	// FilePath is the validated X9 file.
	FilePath string

	// RunID correlates the report with log output.
	RunID string

	// Generated defaults to the current time.
	Generated time.Time
}

// WriteValidationReport writes a text report for result into dir.
//
// PARAMETERS:
//   - result: The validation result to report.
//   - meta: The file and run the result belongs to.
//   - dir: The directory to write the report into. It is created if missing.
//   - nameFormat: The report file name format. Empty means DefaultNameFormat.
//
// RETURNS:
//   - The path to the report file.
//   - An error if writing fails.
func WriteValidationReport(result *validation.ValidationResult, meta Meta, dir, nameFormat string) (string, error) {
	if result == nil {
		return "", fmt.Errorf("failed to write validation report: no result")
	}
	if nameFormat == "" {
		nameFormat = DefaultNameFormat
	}
	if meta.Generated.IsZero() {
		meta.Generated = time.Now()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	name := utils.GenerateOutputFileName(nameFormat, map[string]string{
		"original": utils.BaseName(meta.FilePath),
	}, ".txt")
	reportPath := filepath.Join(dir, name)

	file, err := os.Create(reportPath)
	if err != nil {
		return "", fmt.Errorf("failed to create validation report: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	status := "PASSED"
	if !result.Status {
		status = "FAILED"
	}

	fmt.Fprintf(writer, "X9 Check Image Validator - Validation Report\n"+
		"Generated: %s\n"+
		"Run ID:    %s\n"+
		"File:      %s\n"+
		"Status:    %s\n"+
		"Findings:  %d (hard %d, soft %d)\n"+
		"%s\n\n",
		meta.Generated.Format(timestampLayout),
		meta.RunID,
		meta.FilePath,
		status,
		len(result.Findings),
		result.Count(validation.SeverityHard),
		result.Count(validation.SeveritySoft),
		rule)

	for i, f := range result.Findings {
		fmt.Fprintf(writer, "Finding #%d\n"+
			"  Severity:  %s\n"+
			"  Scope:     %s\n",
			i+1, f.Severity, f.Scope)
		if f.BundleID != "" {
			fmt.Fprintf(writer, "  Bundle:    %s\n", f.BundleID)
		}
		fmt.Fprintf(writer, "  Message:   %s\n\n", f.Message)
	}

	fmt.Fprintf(writer, "%s\nEnd of Validation Report\n", rule)

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush validation report: %w", err)
	}

	return reportPath, nil
}
