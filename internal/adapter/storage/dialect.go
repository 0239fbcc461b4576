package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// querier is the statement surface shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect hides the differences between the supported SQL engines. Queries
// are written once with ? placeholders.
type Dialect interface {
	// DriverName is the database/sql driver to open.
	DriverName() string

	Rebind(query string) string

	// JSONParam is the placeholder expression for a JSON column value.
	JSONParam() string

	// InsertID runs an INSERT and returns the generated key in idColumn.
	InsertID(ctx context.Context, q querier, query, idColumn string, args ...any) (int64, error)

	// TranslateError maps engine error codes onto the port sentinels.
	TranslateError(err error) error
}

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverMySQL:
		return mysqlDialect{}, nil
	case DriverPostgres:
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
