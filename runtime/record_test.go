package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store used to drive Record without a
// database. Predicates evaluate with Match.
type memStore struct {
	table   string
	rows    []Row
	selects int
	updates int
}

func (m *memStore) InsertRow(_ context.Context, table string, b *RowBuilder, _ []string) (Row, error) {
	row := Row{}
	for i, c := range b.Columns() {
		row[c] = b.Values()[i]
	}
	m.rows = append(m.rows, row)
	return row, nil
}

func (m *memStore) SelectRows(_ context.Context, table string, cols []string, p Predicate, _ ...QueryOption) ([]Row, error) {
	m.selects++
	var out []Row
	for _, row := range m.rows {
		if !p.Match(row) {
			continue
		}
		sel := make(Row, len(cols))
		for _, c := range cols {
			sel[c] = row[c]
		}
		out = append(out, sel)
	}
	return out, nil
}

func (m *memStore) UpdateRows(_ context.Context, table string, b *RowBuilder, p Predicate) (int64, error) {
	m.updates++
	var n int64
	for _, row := range m.rows {
		if !p.Match(row) {
			continue
		}
		for i, c := range b.Columns() {
			row[c] = b.Values()[i]
		}
		n++
	}
	return n, nil
}

func (m *memStore) DeleteRows(_ context.Context, table string, p Predicate) (int64, error) {
	var n int64
	kept := m.rows[:0]
	for _, row := range m.rows {
		if p.Match(row) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	return n, nil
}

var _ Store = (*memStore)(nil)

var userCols = []string{"id", "name", "email"}

func userStore() *memStore {
	return &memStore{
		table: "users",
		rows: []Row{
			{"id": int64(1), "name": "a8m", "email": "a8m@github"},
			{"id": int64(2), "name": "nati", "email": nil},
		},
	}
}

func TestRecordLazyLoad(t *testing.T) {
	store := userStore()
	r := NewRecord(store, "users", "id", int64(1), userCols)
	ctx := context.Background()

	assert.Zero(t, store.selects)
	v, err := r.Get(ctx, "name")
	require.NoError(t, err)
	assert.Equal(t, "a8m", v)
	assert.Equal(t, 1, store.selects)

	// Further reads hit the cache.
	v, err = r.Get(ctx, "email")
	require.NoError(t, err)
	assert.Equal(t, "a8m@github", v)
	assert.Equal(t, 1, store.selects)

	_, err = r.Get(ctx, "missing")
	assert.ErrorContains(t, err, `no column "missing"`)
}

func TestRecordNotFound(t *testing.T) {
	r := NewRecord(userStore(), "users", "id", int64(99), userCols)
	_, err := r.Get(context.Background(), "name")
	require.True(t, IsNotFound(err))
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(99), nf.ID())
}

func TestRecordNotSingular(t *testing.T) {
	store := userStore()
	store.rows = append(store.rows, Row{"id": int64(1), "name": "dup", "email": nil})
	r := NewRecord(store, "users", "id", int64(1), userCols)
	_, err := r.Get(context.Background(), "name")
	assert.True(t, IsNotSingular(err))
}

func TestRecordPrime(t *testing.T) {
	store := userStore()
	r := NewRecord(store, "users", "id", int64(1), userCols)
	r.Prime(Row{"id": int64(1), "name": "primed", "email": nil})

	v, err := r.Get(context.Background(), "name")
	require.NoError(t, err)
	assert.Equal(t, "primed", v)
	assert.Zero(t, store.selects)
}

func TestRecordDirtyShadowsCache(t *testing.T) {
	store := userStore()
	r := NewRecord(store, "users", "id", int64(1), userCols)
	ctx := context.Background()

	assert.False(t, r.Dirty())
	r.Set("name", "renamed")
	assert.True(t, r.Dirty())

	// The buffered write wins over the stored value, without loading.
	v, err := r.Get(ctx, "name")
	require.NoError(t, err)
	assert.Equal(t, "renamed", v)
	assert.Zero(t, store.selects)

	// Unbuffered columns still read through.
	v, err = r.Get(ctx, "email")
	require.NoError(t, err)
	assert.Equal(t, "a8m@github", v)
	assert.Equal(t, 1, store.selects)
}

func TestRecordFlush(t *testing.T) {
	store := userStore()
	r := NewRecord(store, "users", "id", int64(1), userCols)
	ctx := context.Background()

	// Flushing clean is a no-op.
	require.NoError(t, r.Flush(ctx))
	assert.Zero(t, store.updates)

	r.Set("name", "renamed")
	r.Set("email", "renamed@github")
	require.NoError(t, r.Flush(ctx))
	assert.Equal(t, 1, store.updates)
	assert.False(t, r.Dirty())
	assert.Equal(t, "renamed", store.rows[0]["name"])

	// The flushed values stay readable without another select.
	v, err := r.Get(ctx, "name")
	require.NoError(t, err)
	assert.Equal(t, "renamed", v)
}

func TestRecordFlushGone(t *testing.T) {
	store := userStore()
	r := NewRecord(store, "users", "id", int64(1), userCols)
	_, err := store.DeleteRows(context.Background(), "users", Eq("id", int64(1)))
	require.NoError(t, err)

	r.Set("name", "renamed")
	err = r.Flush(context.Background())
	assert.True(t, IsNotFound(err))
}

func TestRecordReload(t *testing.T) {
	store := userStore()
	r := NewRecord(store, "users", "id", int64(1), userCols)
	ctx := context.Background()

	_, err := r.Get(ctx, "name")
	require.NoError(t, err)

	// Another writer changes the row out from under the cache.
	store.rows[0]["name"] = "changed"
	v, err := r.Get(ctx, "name")
	require.NoError(t, err)
	assert.Equal(t, "a8m", v)

	r.Set("name", "buffered")
	require.NoError(t, r.Reload(ctx))
	assert.False(t, r.Dirty())
	v, err = r.Get(ctx, "name")
	require.NoError(t, err)
	assert.Equal(t, "changed", v)
}

func TestField(t *testing.T) {
	store := userStore()
	ctx := context.Background()

	r := NewRecord(store, "users", "id", int64(1), userCols)
	name, err := Field(ctx, r, "name", String)
	require.NoError(t, err)
	assert.Equal(t, "a8m", name)

	email, err := Field(ctx, r, "email", func(v any) (*string, error) {
		return Nullable(v, String)
	})
	require.NoError(t, err)
	require.NotNil(t, email)
	assert.Equal(t, "a8m@github", *email)

	r2 := NewRecord(store, "users", "id", int64(2), userCols)
	email, err = Field(ctx, r2, "email", func(v any) (*string, error) {
		return Nullable(v, String)
	})
	require.NoError(t, err)
	assert.Nil(t, email)

	r3 := NewRecord(store, "users", "id", int64(99), userCols)
	_, err = Field(ctx, r3, "name", String)
	assert.True(t, IsNotFound(err))
}
