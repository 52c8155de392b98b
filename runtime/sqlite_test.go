package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func sqliteStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := Open("sqlite", "file:runtime?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.DB().Exec(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT
		)
	`)
	require.NoError(t, err)
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := sqliteStore(t)
	ctx := context.Background()

	row, err := s.InsertRow(ctx, "users", NewRow().Set("name", "a8m").Set("email", "a8m@github"), []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), row["id"])
	assert.Equal(t, "a8m", row["name"])

	_, err = s.InsertRow(ctx, "users", NewRow().Set("name", "nati"), []string{"id"})
	require.NoError(t, err)

	rows, err := s.SelectRows(ctx, "users", []string{"id", "name", "email"}, All(), OrderByDesc("id"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "nati", rows[0]["name"])
	assert.Nil(t, rows[0]["email"])
	assert.Equal(t, "a8m", rows[1]["name"])

	rows, err = s.SelectRows(ctx, "users", []string{"id"}, NotNull("email"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0]["id"])

	n, err := s.UpdateRows(ctx, "users", NewRow().Set("email", "nati@github"), Eq("id", int64(2)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err = s.SelectRows(ctx, "users", []string{"email"}, Eq("id", int64(2)))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "nati@github", rows[0]["email"])

	n, err = s.DeleteRows(ctx, "users", In("id", int64(1), int64(2)))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, err = s.SelectRows(ctx, "users", []string{"id"}, All())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSQLiteRecord(t *testing.T) {
	s := sqliteStore(t)
	ctx := context.Background()

	row, err := s.InsertRow(ctx, "users", NewRow().Set("name", "a8m").Set("email", "a8m@github"), []string{"id"})
	require.NoError(t, err)
	id, err := Int64(row["id"])
	require.NoError(t, err)

	r := NewRecord(s, "users", "id", id, []string{"id", "name", "email"})
	name, err := Field(ctx, r, "name", String)
	require.NoError(t, err)
	assert.Equal(t, "a8m", name)

	r.Set("name", "mashraki")
	require.NoError(t, r.Flush(ctx))

	rows, err := s.SelectRows(ctx, "users", []string{"name"}, Eq("id", id))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "mashraki", rows[0]["name"])

	require.NoError(t, r.Reload(ctx))
	name, err = Field(ctx, r, "name", String)
	require.NoError(t, err)
	assert.Equal(t, "mashraki", name)
}
