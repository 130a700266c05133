package customer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
)

// OpenCSV loads customers from a comma-separated file with a header row.
func OpenCSV(path, nameColumn, emailColumn string) (*TableDirectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open customer file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(bufio.NewReader(f))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse customer file: %w", err)
	}

	return newTableDirectory(path, rows, nameColumn, emailColumn)
}
