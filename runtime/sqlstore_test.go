package runtime

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockStore(t *testing.T, dialect string) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return OpenDB(dialect, db), mock
}

func TestDialect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, Postgres, OpenDB("postgres", db).Dialect())
	assert.Equal(t, MySQL, OpenDB("mysql", db).Dialect())
	assert.Equal(t, SQLite, OpenDB("sqlite3", db).Dialect())
	// Unknown dialects pass through.
	assert.Equal(t, "sqlite", OpenDB("sqlite", db).Dialect())
}

func TestInsertRowReturning(t *testing.T) {
	s, mock := mockStore(t, Postgres)
	now := time.Now()
	mock.ExpectQuery("INSERT INTO users (name, email) VALUES ($1, $2) RETURNING id, created_at").
		WithArgs("a8m", "a8m@github").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))

	b := NewRow().Set("name", "a8m").Set("email", "a8m@github")
	row, err := s.InsertRow(context.Background(), "users", b, []string{"id", "created_at"})
	require.NoError(t, err)
	assert.Equal(t, Row{"name": "a8m", "email": "a8m@github", "id": int64(1), "created_at": now}, row)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRowMySQL(t *testing.T) {
	s, mock := mockStore(t, MySQL)
	mock.ExpectExec("INSERT INTO users (name) VALUES (?)").
		WithArgs("a8m").
		WillReturnResult(sqlmock.NewResult(7, 1))

	row, err := s.InsertRow(context.Background(), "users", NewRow().Set("name", "a8m"), []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, Row{"name": "a8m", "id": int64(7)}, row)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRowNoReturning(t *testing.T) {
	s, mock := mockStore(t, SQLite)
	mock.ExpectExec("INSERT INTO logs (kind) VALUES (?)").
		WithArgs("audit").
		WillReturnResult(sqlmock.NewResult(0, 1))

	row, err := s.InsertRow(context.Background(), "logs", NewRow().Set("kind", "audit"), nil)
	require.NoError(t, err)
	assert.Equal(t, Row{"kind": "audit"}, row)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectRows(t *testing.T) {
	s, mock := mockStore(t, SQLite)
	mock.ExpectQuery("SELECT id, name FROM users WHERE (name = ? AND id IN (?, ?)) ORDER BY name DESC LIMIT 2 OFFSET 1").
		WithArgs("a8m", int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(2), "a8m").
			AddRow(int64(1), "a8m"))

	rows, err := s.SelectRows(context.Background(), "users", []string{"id", "name"},
		And(Eq("name", "a8m"), In("id", int64(1), int64(2))),
		OrderByDesc("name"), Limit(2), Offset(1),
	)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"id": int64(2), "name": "a8m"}, rows[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectRowsPostgresPlaceholders(t *testing.T) {
	s, mock := mockStore(t, Postgres)
	mock.ExpectQuery("SELECT id FROM users WHERE (name = $1 OR email IS NULL)").
		WithArgs("a8m").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := s.SelectRows(context.Background(), "users", []string{"id"},
		Or(Eq("name", "a8m"), IsNull("email")),
	)
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectRowsEmptyAnd(t *testing.T) {
	s, mock := mockStore(t, SQLite)
	// An empty conjunction matches everything and compiles to no clause.
	mock.ExpectQuery("SELECT id FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := s.SelectRows(context.Background(), "users", []string{"id"}, And())
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectRowsEmptyIn(t *testing.T) {
	s, mock := mockStore(t, SQLite)
	// An empty IN can match nothing; the clause short-circuits.
	mock.ExpectQuery("SELECT id FROM users WHERE 1 = 0").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := s.SelectRows(context.Background(), "users", []string{"id"}, In("id"))
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRows(t *testing.T) {
	s, mock := mockStore(t, Postgres)
	mock.ExpectExec("UPDATE users SET name = $1, email = $2 WHERE id = $3").
		WithArgs("nati", "nati@github", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	b := NewRow().Set("name", "nati").Set("email", "nati@github")
	n, err := s.UpdateRows(context.Background(), "users", b, Eq("id", int64(1)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRowsNoColumns(t *testing.T) {
	s, mock := mockStore(t, SQLite)
	n, err := s.UpdateRows(context.Background(), "users", NewRow(), Eq("id", int64(1)))
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRows(t *testing.T) {
	s, mock := mockStore(t, SQLite)
	mock.ExpectExec("DELETE FROM users WHERE id = ?").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := s.DeleteRows(context.Background(), "users", Eq("id", int64(1)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRowsAll(t *testing.T) {
	s, mock := mockStore(t, SQLite)
	mock.ExpectExec("DELETE FROM users").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.DeleteRows(context.Background(), "users", All())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidIdentifiers(t *testing.T) {
	s, mock := mockStore(t, SQLite)
	ctx := context.Background()

	_, err := s.SelectRows(ctx, "users; DROP TABLE users", []string{"id"}, All())
	assert.ErrorContains(t, err, "invalid table name")

	_, err = s.SelectRows(ctx, "users", []string{"id, name"}, All())
	assert.ErrorContains(t, err, "invalid column name")

	_, err = s.SelectRows(ctx, "users", []string{"id"}, Eq("name = 'x' --", 1))
	assert.ErrorContains(t, err, "invalid column name")

	_, err = s.SelectRows(ctx, "users", []string{"id"}, All(), OrderBy("name; --"))
	assert.ErrorContains(t, err, "invalid column name")

	_, err = s.InsertRow(ctx, "users", NewRow().Set("name", "a8m"), []string{"id) --"})
	assert.ErrorContains(t, err, "invalid column name")

	require.NoError(t, mock.ExpectationsWereMet())
}
