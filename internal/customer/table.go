package customer

import (
	"context"
	"fmt"
	"strings"
)

// TableDirectory holds customers loaded from a spreadsheet-like source.
type TableDirectory struct {
	source    string
	customers map[string]*Customer
}

// newTableDirectory indexes rows whose first row is a header. Header cells
// are matched case-insensitively; blank names are skipped and the first
// occurrence of a name wins.
func newTableDirectory(source string, rows [][]string, nameColumn, emailColumn string) (*TableDirectory, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: no header row", source)
	}

	headers := cleanHeaders(rows[0])
	nameIdx := indexOf(headers, nameColumn)
	emailIdx := indexOf(headers, emailColumn)
	if nameIdx < 0 || emailIdx < 0 {
		return nil, fmt.Errorf("%s: header must contain %q and %q columns", source, nameColumn, emailColumn)
	}

	d := &TableDirectory{source: source, customers: make(map[string]*Customer)}
	for _, row := range rows[1:] {
		name := cell(row, nameIdx)
		if name == "" {
			continue
		}
		if _, dup := d.customers[name]; dup {
			continue
		}
		d.customers[name] = &Customer{LongName: name, ContactEmail: cell(row, emailIdx)}
	}
	return d, nil
}

// Lookup implements Directory.
func (d *TableDirectory) Lookup(_ context.Context, longName string) (*Customer, error) {
	name := strings.TrimSpace(longName)
	c, ok := d.customers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	found := *c
	return &found, nil
}

// Len returns the number of customers loaded.
func (d *TableDirectory) Len() int {
	return len(d.customers)
}

// Close implements Directory.
func (d *TableDirectory) Close() error {
	return nil
}

// cleanHeaders trims headers and drops a UTF-8 byte order mark.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		cleaned[i] = strings.TrimSpace(h)
	}
	return cleaned
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
