package auth

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophchat/internal/common"
)

func newStoreWithMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPostgresStore(db), mock
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock := newStoreWithMock(t)

	rows := sqlmock.NewRows([]string{"username", "salt", "verifier"}).
		AddRow("alice", []byte{1, 2}, []byte{3, 4})

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT username, salt, verifier FROM credentials`)).
		WithArgs("alice").
		WillReturnRows(rows)

	cred, err := store.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", cred.Username)
	assert.Equal(t, []byte{1, 2}, cred.Salt)
	assert.Equal(t, []byte{3, 4}, cred.Verifier)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetNotFound(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT username, salt, verifier FROM credentials`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"username", "salt", "verifier"}))

	_, err := store.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Put(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO credentials (username, salt, verifier)`)).
		WithArgs("alice", []byte{1}, []byte{2}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Put(context.Background(), &Credential{Username: "alice", Salt: []byte{1}, Verifier: []byte{2}})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PutDuplicate(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO credentials (username, salt, verifier)`)).
		WithArgs("alice", []byte{1}, []byte{2}).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := store.Put(context.Background(), &Credential{Username: "alice", Salt: []byte{1}, Verifier: []byte{2}})
	assert.ErrorIs(t, err, common.ErrUserAlreadyExists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FlushIsNoop(t *testing.T) {
	store, _ := newStoreWithMock(t)
	assert.NoError(t, store.Flush())
}
