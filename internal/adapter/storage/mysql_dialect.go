package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/artisan-market/internal/port"
)

const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrLockNowait      = 3572
)

type mysqlDialect struct{}

func (mysqlDialect) DriverName() string { return "mysql" }

func (mysqlDialect) Rebind(query string) string { return query }

func (mysqlDialect) JSONParam() string { return "?" }

func (d mysqlDialect) InsertID(ctx context.Context, q querier, query, _ string, args ...any) (int64, error) {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, d.TranslateError(err)
	}
	return result.LastInsertId()
}

func (mysqlDialect) TranslateError(err error) error {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return err
	}
	switch myErr.Number {
	case mysqlErrLockNowait, mysqlErrLockWaitTimeout:
		return fmt.Errorf("%w: %w", port.ErrLockNotAvailable, err)
	case mysqlErrDuplicateEntry:
		return fmt.Errorf("%w: %w", port.ErrConflict, err)
	}
	return err
}

// normalizeMySQLDSN forces the DSN options the scanners rely on.
func normalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}
