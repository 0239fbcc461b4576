package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rl1809/artisan-market/internal/port"
)

const (
	pgUniqueViolation  = "23505"
	pgLockNotAvailable = "55P03"
)

type postgresDialect struct{}

func (postgresDialect) DriverName() string { return "pgx" }

// Rebind turns ? placeholders into $1..$n. Queries in this package never
// carry a literal question mark.
func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (postgresDialect) JSONParam() string { return "?::text::jsonb" }

func (d postgresDialect) InsertID(ctx context.Context, q querier, query, idColumn string, args ...any) (int64, error) {
	var id int64
	if err := q.QueryRowContext(ctx, query+" RETURNING "+idColumn, args...).Scan(&id); err != nil {
		return 0, d.TranslateError(err)
	}
	return id, nil
}

func (postgresDialect) TranslateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgLockNotAvailable:
		return fmt.Errorf("%w: %w", port.ErrLockNotAvailable, err)
	case pgUniqueViolation:
		return fmt.Errorf("%w: %w", port.ErrConflict, err)
	}
	return err
}
