package db

import (
	"context"
	"database/sql"
)

// DBTX is implemented by both *sql.DB and *sql.Tx so store functions can run
// standalone or as part of a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RunInTx runs fn in a transaction. The transaction commits if fn returns nil
// and rolls back otherwise. Lock contention is reported as model.ErrBusy.
func RunInTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Classify(err)
	}

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return Classify(err)
	}
	return Classify(tx.Commit())
}
