package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/x9-check-image-validator/internal/convert"
	"github.com/ginjaninja78/x9-check-image-validator/internal/deposit"
	"github.com/ginjaninja78/x9-check-image-validator/internal/validation"
)

func failedResult() *validation.ValidationResult {
	return &validation.ValidationResult{
		Findings: []validation.Finding{
			{
				Scope:    validation.ScopeBundle,
				BundleID: "1",
				Severity: validation.SeverityHard,
				Message:  "Bundle control record for bundle 1 is incorrect.",
			},
			{
				Scope:    validation.ScopeCashLetter,
				Severity: validation.SeveritySoft,
				Message:  "Cash letter control record is possibly incorrect.",
			},
		},
	}
}

func TestFormatFindings(t *testing.T) {
	assert.Equal(t, "No findings.\n", FormatFindings(&validation.ValidationResult{Status: true}))
	assert.Equal(t, "No findings.\n", FormatFindings(nil))

	got := FormatFindings(failedResult())
	assert.Equal(t,
		"1. [hard] Bundle control record for bundle 1 is incorrect.\n"+
			"2. [soft] Cash letter control record is possibly incorrect.\n",
		got)
}

func TestWriteValidationReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	meta := Meta{
		FilePath:  "/deposits/acme-0315.x9",
		RunID:     "run-1",
		Generated: time.Date(2024, 3, 15, 14, 5, 0, 0, time.UTC),
	}

	path, err := WriteValidationReport(failedResult(), meta, dir, "{original}_report")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "acme-0315_report.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "Generated: 2024-03-15 14:05:00")
	assert.Contains(t, text, "Run ID:    run-1")
	assert.Contains(t, text, "Status:    FAILED")
	assert.Contains(t, text, "Findings:  2 (hard 1, soft 1)")
	assert.Contains(t, text, "Finding #1\n  Severity:  hard\n  Scope:     bundle\n  Bundle:    1\n")
	assert.Contains(t, text, "Finding #2\n  Severity:  soft\n  Scope:     cash letter\n  Message:")
	assert.True(t, strings.HasSuffix(text, "End of Validation Report\n"))
}

func TestWriteValidationReportDefaultName(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteValidationReport(&validation.ValidationResult{Status: true}, Meta{FilePath: "clean.x9"}, dir, "")
	require.NoError(t, err)

	assert.Regexp(t, `^clean_\d{8}_\d{6}_[0-9a-f-]{36}\.txt$`, filepath.Base(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Status:    PASSED")
}

func TestWriteValidationReportNilResult(t *testing.T) {
	_, err := WriteValidationReport(nil, Meta{}, t.TempDir(), "")
	assert.Error(t, err)
}

func TestWriteBatchSummary(t *testing.T) {
	start := time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)
	summary := &BatchSummary{
		RunID:     "run-7",
		StartTime: start,
		EndTime:   start.Add(1500 * time.Millisecond),
		Files: []FileEntry{
			{InputFile: "/in/a.x9", Outcome: OutcomePassed, ArchivePath: "/archive/a.x9"},
			{InputFile: "/in/b.x9", Outcome: OutcomeFindings, Findings: 3, ReportPath: "/reports/b.txt"},
			{InputFile: "/in/c.x9", Outcome: OutcomeMalformed, Error: "malformed file: missing record"},
		},
	}
	assert.Equal(t, 1, summary.Count(OutcomeFindings))
	assert.Equal(t, 0, summary.Count(OutcomeError))

	dir := t.TempDir()
	path, err := WriteBatchSummary(summary, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "batch_summary_20240315_140001.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "Duration:       1.5s")
	assert.Contains(t, text, "Total Files:    3")
	assert.Contains(t, text, "Passed:         1")
	assert.Contains(t, text, "With Findings:  1")
	assert.Contains(t, text, "Malformed:      1")
	assert.Contains(t, text, "  b.x9 [findings]\n    Findings: 3\n    Report:   /reports/b.txt\n")
	assert.Contains(t, text, "    Archived: /archive/a.x9\n")
	assert.Contains(t, text, "    Error:    malformed file: missing record\n")
}

func TestWriteDepositWorkbook(t *testing.T) {
	summary := &deposit.Summary{
		CustomerName: "ACME WIDGETS",
		FileName:     "acme.x9",
		FileDate:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		FileTime:     convert.TimeOfDay{Hour: 14, Minute: 5},
		Bundles: []deposit.BundleRow{
			{CreditAccount: "061000104", Sequence: 1, ItemCount: 3, ImageCount: 6, Total: decimal.RequireFromString("125.50")},
		},
		ItemCount:  3,
		ImageCount: 6,
		Total:      decimal.RequireFromString("125.50"),
	}

	path := filepath.Join(t.TempDir(), "deposit.xlsx")
	require.NoError(t, WriteDepositWorkbook(summary, path))

	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	defer f.Close()

	cell := func(ref string) string {
		v, err := f.GetCellValue(WorkbookSheet, ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "acme.x9", cell("B2"))
	assert.Equal(t, "ACME WIDGETS", cell("B3"))
	assert.Equal(t, "03/15/2024", cell("B4"))
	assert.Equal(t, "14:05", cell("B5"))
	assert.Equal(t, "Credit Account", cell("B7"))
	assert.Equal(t, "061000104", cell("B8"))
	assert.Equal(t, "3", cell("C8"))
	assert.Equal(t, "125.5", cell("E8"))
	assert.Equal(t, "File Totals", cell("A10"))
	assert.Equal(t, "6", cell("D10"))
}
