package customer

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// OpenWorkbook loads customers from an XLSX workbook. The first row of the
// sheet holds the column headers. An empty sheet name selects the first
// sheet.
func OpenWorkbook(path, sheet, nameColumn, emailColumn string) (*TableDirectory, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open customer workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("customer workbook has no sheets")
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return newTableDirectory(path+":"+sheet, rows, nameColumn, emailColumn)
}
