// Package sqlxrepos implements the storage contracts on postgres.
//
// Every link operation runs inside a transaction: the existence checks, the
// membership check and the write commit or roll back together. Unique
// constraints on the join tables back the in-transaction checks, so a race
// between two adds of the same pair surfaces as core.ErrAlreadyPresent on
// the losing side.
package sqlxrepos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	pkgerrors "github.com/pkg/errors"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqForeignKeyViolation
	}
	return false
}

// runInTx runs fn inside a transaction, committing on nil and rolling back
// otherwise.
func runInTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return pkgerrors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return pkgerrors.Wrap(err, "committing transaction")
	}
	return nil
}
