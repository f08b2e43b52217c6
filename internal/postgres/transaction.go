package postgres

import (
	"context"
	"database/sql"
	"fmt"

	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// Tx is a transaction carried in the context. Nested WithTx calls on the
// same context become savepoints inside it.
type Tx struct {
	*sqlx.Tx
	depth int
	ID    string
}

// GetTx retrieves a transaction from the context if it exists
func GetTx(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*Tx)
	return tx, ok
}

func (tx *Tx) savepoint() string {
	return fmt.Sprintf("sp_%d", tx.depth)
}

// begin opens a transaction, or a savepoint when ctx already carries one
func (db *DB) begin(ctx context.Context) (context.Context, *Tx, error) {
	if tx, ok := GetTx(ctx); ok {
		tx.depth++
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+tx.savepoint()); err != nil {
			tx.depth--
			return ctx, nil, ierr.WithError(err).
				WithMessage("failed to create savepoint").
				Mark(ierr.ErrDatabase)
		}
		db.logger.Debugw("created savepoint", "tx_id", tx.ID, "savepoint", tx.savepoint())
		return ctx, tx, nil
	}

	sqlxTx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return ctx, nil, ierr.WithError(err).
			WithMessage("failed to begin transaction").
			Mark(ierr.ErrDatabase)
	}

	tx := &Tx{Tx: sqlxTx, ID: types.GenerateUUID()}
	db.logger.Debugw("started transaction", "tx_id", tx.ID)
	return context.WithValue(ctx, txKey{}, tx), tx, nil
}

func (db *DB) commit(ctx context.Context, tx *Tx) error {
	if tx.depth > 0 {
		defer func() { tx.depth-- }()
		_, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+tx.savepoint())
		return markTxErr(err, "failed to release savepoint")
	}
	db.logger.Debugw("committing transaction", "tx_id", tx.ID)
	return markTxErr(tx.Commit(), "failed to commit transaction")
}

func (db *DB) rollback(ctx context.Context, tx *Tx) error {
	if tx.depth > 0 {
		defer func() { tx.depth-- }()
		_, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+tx.savepoint())
		return markTxErr(err, "failed to roll back to savepoint")
	}
	db.logger.Debugw("rolling back transaction", "tx_id", tx.ID)
	return markTxErr(tx.Rollback(), "failed to roll back transaction")
}

func markTxErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	return ierr.WithError(err).WithMessage(msg).Mark(ierr.ErrDatabase)
}

// WithTx runs fn inside a transaction. fn's error rolls it back and is
// returned unchanged; a panic rolls back and is re-raised.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, tx, err := db.begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			db.logger.Errorw("panic in transaction", "tx_id", tx.ID, "panic", r)
			_ = db.rollback(ctx, tx)
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		if rbErr := db.rollback(ctx, tx); rbErr != nil {
			db.logger.Errorw("rollback failed", "tx_id", tx.ID, "error", rbErr, "cause", err)
		}
		return err
	}

	return db.commit(ctx, tx)
}
