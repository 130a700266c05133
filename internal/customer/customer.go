// Package customer looks up the contact for a deposit file's originator.
//
// Files identify their originator only by the immediate origin name in the
// file header. The directory maps that name to the address that receives
// deposit confirmations.
package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/x9-check-image-validator/internal/config"
)

// ErrNotFound is returned when no customer has the requested name.
var ErrNotFound = errors.New("customer not found")

// Customer is a directory entry.
type Customer struct {
	LongName     string
	ContactEmail string
}

// Directory finds customers by long name. Names are compared after
// trimming surrounding blanks.
type Directory interface {
	Lookup(ctx context.Context, longName string) (*Customer, error)
	Close() error
}

// Open returns the directory selected by cfg.Driver.
func Open(ctx context.Context, cfg config.CustomersConfig) (Directory, error) {
	var (
		dir Directory
		err error
	)

	switch strings.ToLower(cfg.Driver) {
	case "sqlite", "postgres":
		var d *SQLDirectory
		d, err = OpenSQL(ctx, SQLOptions{
			Driver:      strings.ToLower(cfg.Driver),
			DSN:         cfg.DSN,
			Table:       cfg.Table,
			NameColumn:  cfg.NameColumn,
			EmailColumn: cfg.EmailColumn,
		})
		dir = d
	case "xlsx":
		var d *TableDirectory
		d, err = OpenWorkbook(cfg.DSN, cfg.Sheet, cfg.NameColumn, cfg.EmailColumn)
		dir = d
	case "csv":
		var d *TableDirectory
		d, err = OpenCSV(cfg.DSN, cfg.NameColumn, cfg.EmailColumn)
		dir = d
	default:
		return nil, fmt.Errorf("unsupported customer directory driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, err
	}
	return dir, nil
}
