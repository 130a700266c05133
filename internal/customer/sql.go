package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// SQLOptions describes where customers live in a database.
type SQLOptions struct {
	// Driver is "sqlite" or "postgres".
	Driver      string
	DSN         string
	Table       string
	NameColumn  string
	EmailColumn string
}

// SQLDirectory reads customers from a SQL table.
type SQLDirectory struct {
	db    *sql.DB
	query string
	owned bool
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// OpenSQL opens the database and checks that it answers.
func OpenSQL(ctx context.Context, opts SQLOptions) (*SQLDirectory, error) {
	var driver string
	switch opts.Driver {
	case "sqlite":
		driver = "sqlite3"
	case "postgres":
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", opts.Driver)
	}

	db, err := sql.Open(driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to customer database: %w", err)
	}

	d, err := NewSQLDirectory(db, opts)
	if err != nil {
		db.Close()
		return nil, err
	}
	d.owned = true
	return d, nil
}

// NewSQLDirectory wraps an open database. The caller keeps ownership of db.
func NewSQLDirectory(db *sql.DB, opts SQLOptions) (*SQLDirectory, error) {
	for _, name := range []string{opts.Table, opts.NameColumn, opts.EmailColumn} {
		if !identifier.MatchString(name) {
			return nil, fmt.Errorf("invalid SQL identifier %q", name)
		}
	}

	placeholder := "?"
	if opts.Driver == "postgres" {
		placeholder = "$1"
	}

	query := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = %s LIMIT 1",
		opts.NameColumn, opts.EmailColumn, opts.Table, opts.NameColumn, placeholder)

	return &SQLDirectory{db: db, query: query}, nil
}

// Lookup implements Directory.
func (d *SQLDirectory) Lookup(ctx context.Context, longName string) (*Customer, error) {
	name := strings.TrimSpace(longName)

	var c Customer
	var email sql.NullString
	err := d.db.QueryRowContext(ctx, d.query, name).Scan(&c.LongName, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("query customer %q: %w", name, err)
	}

	c.LongName = strings.TrimSpace(c.LongName)
	c.ContactEmail = strings.TrimSpace(email.String)
	return &c, nil
}

// Close closes the database if the directory opened it.
func (d *SQLDirectory) Close() error {
	if d.owned {
		return d.db.Close()
	}
	return nil
}
