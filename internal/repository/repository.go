package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DBTX is an interface abstracting *sqlx.DB and *sqlx.Tx for repository use.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
}

func boolToNumber(b bool) int {
	if b {
		return 1
	}
	return 0
}
