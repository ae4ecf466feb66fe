package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTxManagerCommitsAndRoutesQueriesThroughTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM projects WHERE id = $1")).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	projects := NewProjectRepository(db)
	err := NewTxManager(db).WithinTx(context.Background(), func(ctx context.Context) error {
		return projects.Delete(ctx, "p-1")
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManagerRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("insert failed")
	err := NewTxManager(db).WithinTx(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManagerRollsBackOnPanic(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = NewTxManager(db).WithinTx(context.Background(), func(context.Context) error { panic("boom") })
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManagerNestedCallsJoinOuterTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectCommit()

	tm := NewTxManager(db)
	err := tm.WithinTx(context.Background(), func(ctx context.Context) error {
		return tm.WithinTx(ctx, func(context.Context) error { return nil })
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNamedInsertBatchChunks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	type row struct {
		ID string `db:"id"`
	}
	rows := make([]row, insertBatchSize+1)
	for i := range rows {
		rows[i].ID = "r"
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO t (id) VALUES")).WillReturnResult(sqlmock.NewResult(0, insertBatchSize))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO t (id) VALUES")).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, namedInsertBatch(context.Background(), db, "INSERT INTO t (id) VALUES (:id)", rows))
	require.NoError(t, mock.ExpectationsWereMet())
}
