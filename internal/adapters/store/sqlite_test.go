package store

import (
	"authbot/internal/core/domain"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "AuthBot.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)

	authorized, pending, err := s.Load(t.Context())
	require.NoError(t, err)
	assert.Empty(t, authorized)
	assert.Empty(t, pending)

	wantAuthorized := map[domain.Identity]domain.IdentityMetadata{
		1234: {},
		42:   {FirstName: "Ann", LastName: "Lee"},
	}
	wantPending := map[domain.Identity]domain.IdentityMetadata{
		7: {FirstName: "Eve"},
	}
	require.NoError(t, s.Persist(t.Context(), wantAuthorized, wantPending))

	delete(wantPending, 7)
	wantPending[8] = domain.IdentityMetadata{LastName: "Smith"}
	require.NoError(t, s.Persist(t.Context(), wantAuthorized, wantPending))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	authorized, pending, err = reopened.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, wantAuthorized, authorized)
	assert.Equal(t, map[domain.Identity]domain.IdentityMetadata{8: {LastName: "Smith"}}, pending)
}

func TestSQLiteStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "AuthBot.db")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("not a sqlite database "), 100), 0o600))

	_, err := NewSQLiteStore(path)
	require.ErrorIs(t, err, domain.ErrStoreCorrupt)
}

func newMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS authorized").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS pending").WillReturnResult(sqlmock.NewResult(0, 0))

	s, err := newSQLiteStore(db)
	require.NoError(t, err)

	return s, mock
}

func TestSQLiteStore_SchemaFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS authorized").WillReturnError(errors.New("file is not a database"))

	_, err = newSQLiteStore(db)
	require.ErrorIs(t, err, domain.ErrStoreCorrupt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_LoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
	}{
		{
			name: "query fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT identity, first_name, last_name FROM authorized").
					WillReturnError(errors.New("disk I/O error"))
			},
		},
		{
			name: "scan fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT identity, first_name, last_name FROM authorized").
					WillReturnRows(sqlmock.NewRows([]string{"identity", "first_name", "last_name"}).
						AddRow("not-a-number", "a", "b"))
			},
		},
		{
			name: "second table fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT identity, first_name, last_name FROM authorized").
					WillReturnRows(sqlmock.NewRows([]string{"identity", "first_name", "last_name"}).
						AddRow(1234, "", ""))
				mock.ExpectQuery("SELECT identity, first_name, last_name FROM pending").
					WillReturnError(errors.New("no such table"))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			tc.setup(mock)

			_, _, err := s.Load(t.Context())
			require.ErrorIs(t, err, domain.ErrStoreCorrupt)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLiteStore_PersistRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM authorized").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO authorized").
		WithArgs(int64(1234), "", "").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.Persist(t.Context(),
		map[domain.Identity]domain.IdentityMetadata{1234: {}},
		map[domain.Identity]domain.IdentityMetadata{})

	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_PersistCommits(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM authorized").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO authorized").
		WithArgs(int64(1234), "", "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM pending").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO pending").
		WithArgs(int64(7), "Eve", "Smith").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := s.Persist(t.Context(),
		map[domain.Identity]domain.IdentityMetadata{1234: {}},
		map[domain.Identity]domain.IdentityMetadata{7: {FirstName: "Eve", LastName: "Smith"}})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
