package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/x9-check-image-validator/internal/deposit"
)

// WorkbookSheet is the sheet the deposit summary is written to.
const WorkbookSheet = "Deposit"

const moneyFormat = `"$"#,##0.00`

var bundleColumns = []string{"Bundle", "Credit Account", "Check Records", "Check Images", "Check Total"}

// WriteDepositWorkbook writes summary as an XLSX workbook at path. Amounts
// are stored as numbers with a currency format.
func WriteDepositWorkbook(summary *deposit.Summary, path string) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", WorkbookSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	numFmt := moneyFormat
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("failed to create money style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	w := &sheetWriter{f: f}
	w.row(1, "Deposit Summary")
	w.row(2, "File Name", summary.FileName)
	w.row(3, "Client", summary.CustomerName)
	w.row(4, "Date", summary.DateText())
	w.row(5, "Time", summary.TimeText())

	const headerRow = 7
	values := make([]any, len(bundleColumns))
	for i, c := range bundleColumns {
		values[i] = c
	}
	w.row(headerRow, values...)

	r := headerRow + 1
	for i, b := range summary.Bundles {
		w.row(r, i+1, b.CreditAccount, b.ItemCount, b.ImageCount, b.Total.InexactFloat64())
		r++
	}
	totalsRow := r + 1
	w.row(totalsRow, "File Totals", "", summary.ItemCount, summary.ImageCount, summary.Total.InexactFloat64())

	if w.err != nil {
		return w.err
	}

	styles := []struct {
		from, to string
		style int
	}{
		{"A1", "A5", boldStyle},
		{"A7", "E7", boldStyle},
		{fmt.Sprintf("A%d", totalsRow), fmt.Sprintf("A%d", totalsRow), boldStyle},
		{fmt.Sprintf("E%d", headerRow+1), fmt.Sprintf("E%d", totalsRow), moneyStyle},
	}
	for _, s := range styles {
		if err := f.SetCellStyle(WorkbookSheet, s.from, s.to, s.style); err != nil {
			return fmt.Errorf("failed to style %s:%s: %w", s.from, s.to, err)
		}
	}
	if err := f.SetColWidth(WorkbookSheet, "A", "E", 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// sheetWriter keeps the first error so rows can be written without
// checking each cell.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) row(r int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, r)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(WorkbookSheet, cell, &values); err != nil {
		w.err = fmt.Errorf("failed to write row %d: %w", r, err)
	}
}
