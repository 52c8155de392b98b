package load

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen/schema"
)

func TestNewTable(t *testing.T) {
	td := schema.Table("users",
		schema.Int64("id").Identity(),
		schema.String("name"),
		schema.Ref("group_id", "groups").Nullable(),
	).
		Comment("registered users").
		WithRepository().
		Projection(schema.Projection("user_summary", "id", "name").WithUpdate()).
		Descriptor()

	tbl, err := NewTable(td)
	require.NoError(t, err)
	assert.Equal(t, "users", tbl.Name)
	assert.Equal(t, "table", tbl.Kind)
	assert.Equal(t, "registered users", tbl.Comment)
	assert.True(t, tbl.Repository)
	assert.False(t, tbl.Dao)

	require.Len(t, tbl.Columns, 3)
	assert.Equal(t, "id", tbl.Columns[0].Name)
	assert.True(t, tbl.Columns[0].Identity)
	assert.Equal(t, schema.TypeInt64, tbl.Columns[0].Type)
	assert.Equal(t, "group_id", tbl.Columns[2].Name)
	assert.Equal(t, "groups", tbl.Columns[2].Ref)
	assert.True(t, tbl.Columns[2].Nullable)

	require.Len(t, tbl.Projections, 1)
	assert.Equal(t, "user_summary", tbl.Projections[0].Name)
	assert.Equal(t, []string{"id", "name"}, tbl.Projections[0].Fields)
	assert.True(t, tbl.Projections[0].UpdateFunction)
}

func TestNewTableBuilderError(t *testing.T) {
	_, err := NewTable(schema.Table("").Descriptor())
	require.Error(t, err)

	_, err = NewTable(schema.Table("users", schema.Int64("id").Identity().Nullable()).Descriptor())
	require.Error(t, err)
	assert.ErrorContains(t, err, `table "users"`)
}

func TestTablesOrder(t *testing.T) {
	tables, err := Tables(
		schema.Table("users", schema.Int64("id").Identity()).Descriptor(),
		schema.Table("posts", schema.Int64("id").Identity()).Descriptor(),
		schema.View("active_users", schema.Int64("id")).Descriptor(),
	)
	require.NoError(t, err)
	require.Len(t, tables, 3)
	assert.Equal(t, "users", tables[0].Name)
	assert.Equal(t, "posts", tables[1].Name)
	assert.Equal(t, "active_users", tables[2].Name)
	assert.Equal(t, "view", tables[2].Kind)
}

func TestMarshalRoundTrip(t *testing.T) {
	in, err := Tables(
		schema.Table("users",
			schema.Int64("id").Identity(),
			schema.String("email").Nullable().Comment("contact address"),
			schema.Timestamp("created_at").Generated().Default("now()"),
		).WithRepository().WithDao().
			Projection(schema.Projection("user_contact", "email").WithUpdate()).
			Descriptor(),
	)
	require.NoError(t, err)

	buf, err := MarshalTables(in)
	require.NoError(t, err)
	out, err := UnmarshalTables(buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestUnmarshalRejectsUnnamed(t *testing.T) {
	buf, err := MarshalTables([]*Table{{Kind: "table"}})
	require.NoError(t, err)
	_, err = UnmarshalTables(buf)
	assert.ErrorContains(t, err, "empty name")
}

func TestUnmarshalGarbage(t *testing.T) {
	_, err := UnmarshalTables([]byte("not msgpack"))
	assert.Error(t, err)
}
