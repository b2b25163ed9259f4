package database

import (
    "context"
    "database/sql"
    "errors"
)

// Beginner is satisfied by *sql.DB and *sqlx.DB.
type Beginner interface {
    BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithTx runs fn inside a transaction.  The transaction is committed when
// fn returns nil and rolled back exactly once otherwise, including when fn
// panics.  A failed rollback is joined to fn's error.
func WithTx(ctx context.Context, db Beginner, opts *sql.TxOptions, fn func(tx *sql.Tx) error) (err error) {
    tx, err := db.BeginTx(ctx, opts)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if committed {
            return
        }
        if p := recover(); p != nil {
            _ = tx.Rollback()
            panic(p)
        }
        if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
            err = errors.Join(err, rbErr)
        }
    }()

    if err = fn(tx); err != nil {
        return err
    }
    if err = tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// ReadCommitted is the isolation used by the purchase transaction.  Row
// locks taken with FOR UPDATE serialize purchasers of one flight and take
// no gap locks at this level.
var ReadCommitted = &sql.TxOptions{Isolation: sql.LevelReadCommitted}
