package storage

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/artisan-market/internal/port"
)

func TestDialectFor(t *testing.T) {
	d, err := DialectFor(DriverMySQL)
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.DriverName())

	d, err = DialectFor(DriverPostgres)
	require.NoError(t, err)
	assert.Equal(t, "pgx", d.DriverName())

	_, err = DialectFor("sqlite")
	assert.Error(t, err)
}

func TestPostgresRebind(t *testing.T) {
	got := postgresDialect{}.Rebind(`INSERT INTO t (a, b, c) VALUES (?, ?, ` + postgresDialect{}.JSONParam() + `)`)
	assert.Equal(t, `INSERT INTO t (a, b, c) VALUES ($1, $2, $3::text::jsonb)`, got)

	assert.Equal(t, `SELECT 1`, postgresDialect{}.Rebind(`SELECT 1`))
	assert.Equal(t, `WHERE a = ?`, mysqlDialect{}.Rebind(`WHERE a = ?`))
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		err     error
		want    error
	}{
		{"mysql nowait", mysqlDialect{}, &mysql.MySQLError{Number: 3572}, port.ErrLockNotAvailable},
		{"mysql lock wait timeout", mysqlDialect{}, &mysql.MySQLError{Number: 1205}, port.ErrLockNotAvailable},
		{"mysql duplicate", mysqlDialect{}, &mysql.MySQLError{Number: 1062}, port.ErrConflict},
		{"postgres lock", postgresDialect{}, &pgconn.PgError{Code: "55P03"}, port.ErrLockNotAvailable},
		{"postgres unique", postgresDialect{}, &pgconn.PgError{Code: "23505"}, port.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.dialect.TranslateError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	plain := errors.New("connection reset")
	assert.Same(t, plain, mysqlDialect{}.TranslateError(plain))
	assert.Same(t, plain, postgresDialect{}.TranslateError(plain))

	other := &pgconn.PgError{Code: "23503"}
	assert.NotErrorIs(t, postgresDialect{}.TranslateError(other), port.ErrConflict)
}

func TestNormalizeMySQLDSN(t *testing.T) {
	dsn, err := normalizeMySQLDSN("root:root@tcp(localhost:3306)/marketplace")
	require.NoError(t, err)

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "marketplace", cfg.DBName)
}
