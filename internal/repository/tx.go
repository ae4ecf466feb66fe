package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bidportal-archiver/pkg/database"
)

type txKey struct{}

// TxManager runs callbacks inside a database transaction carried on the context.
// Repositories pick the transaction up through executor so callers never pass *sqlx.Tx around.
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager constructs a transaction manager.
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx begins a transaction, runs fn and commits. Any error or panic rolls back.
// Nested calls join the outer transaction.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// executor returns the transaction on ctx, or db when there is none.
func executor(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

// noRowsOnBadID treats an id postgres cannot cast to uuid as a missing row.
func noRowsOnBadID(err error) error {
	if database.IsInvalidTextRepresentation(err) {
		return sql.ErrNoRows
	}
	return err
}

// insertBatchSize keeps multi-row inserts well below the 65535 bind parameter limit.
const insertBatchSize = 500

func namedInsertBatch[T any](ctx context.Context, ext sqlx.ExtContext, query string, rows []T) error {
	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := sqlx.NamedExecContext(ctx, ext, query, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}
