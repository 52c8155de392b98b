package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen/schema"
)

func deriveTables(t *testing.T, cfg *Config, builders ...*schema.TableBuilder) ([]*ArtifactSet, *Diagnostics) {
	t.Helper()
	diag := NewDiagnostics()
	reg := NewRegistry(loadTables(t, builders...), diag)
	return Derive(reg, cfg, diag), diag
}

func TestDeriveCreateFullPartition(t *testing.T) {
	sets, diag := deriveTables(t, &Config{}, usersBuilder())
	require.False(t, diag.HasErrors())
	require.Len(t, sets, 1)

	set := sets[0]
	assert.Equal(t, "User", set.Entity)
	assert.Equal(t, "UserCreateData", set.CreateDto.Name)
	assert.Equal(t, "UserCreate", set.CreateDto.Iface)
	assert.Equal(t, "UserFullData", set.FullDto.Name)
	assert.Equal(t, "UserFull", set.FullDto.Iface)

	// Identity and store-generated columns only appear in the full shape.
	assert.Equal(t, []string{"Name", "Email"}, set.CreateDto.FieldNames())
	assert.Equal(t, []string{"ID", "Name", "Email", "CreatedAt"}, set.FullDto.FieldNames())

	// Both shapes share field specs, so the create shape is an ordered
	// subset of the full one.
	assert.Same(t, set.FullDto.Field("Name"), set.CreateDto.Field("Name"))

	// The opaque default expression is carried verbatim.
	assert.Equal(t, "now()", set.FullDto.Field("CreatedAt").Column.Default)

	require.NotNil(t, set.Repository)
	assert.Equal(t, "UserRepository", set.Repository.Name)
	require.NotNil(t, set.Dao)
	assert.Equal(t, "UserEntity", set.Dao.Name)
}

func TestDeriveGetterNames(t *testing.T) {
	sets, diag := deriveTables(t, &Config{}, usersBuilder())
	require.False(t, diag.HasErrors())

	full := sets[0].FullDto
	assert.Equal(t, "GetID", full.Field("ID").Getter)
	assert.Equal(t, "GetCreatedAt", full.Field("CreatedAt").Getter)
}

func TestDeriveProjection(t *testing.T) {
	users := usersBuilder().
		Projection(schema.Projection("user_summary", "id", "name")).
		Projection(schema.Projection("user_contact", "name", "email", "id").WithUpdate())

	sets, diag := deriveTables(t, &Config{}, users)
	require.False(t, diag.HasErrors())
	require.Len(t, sets, 1)
	require.Len(t, sets[0].Projections, 2)

	summary := sets[0].Projections[0]
	assert.Equal(t, "UserSummaryData", summary.Dto.Name)
	assert.Equal(t, "UserSummary", summary.Dto.Iface)
	// Fields keep the projection's declared order.
	assert.Equal(t, []string{"ID", "Name"}, summary.Dto.FieldNames())
	assert.Nil(t, summary.Update)

	contact := sets[0].Projections[1]
	assert.Equal(t, []string{"Name", "Email", "ID"}, contact.Dto.FieldNames())
	require.NotNil(t, contact.Update)
	assert.Equal(t, "UserContactUpdateData", contact.Update.Name)
	// The update shape drops the identity column.
	assert.Equal(t, []string{"Name", "Email"}, contact.Update.FieldNames())
}

func TestDeriveProjectionUnknownFields(t *testing.T) {
	users := usersBuilder().
		Projection(schema.Projection("broken", "name", "nickname", "age")).
		Projection(schema.Projection("ok", "id"))
	posts := postsBuilder()

	sets, diag := deriveTables(t, &Config{}, users, posts)

	// All mismatches of the projection land in one diagnostic.
	require.True(t, diag.HasErrors())
	require.Len(t, diag.Errors(), 1)
	var projErr *ProjectionFieldError
	require.ErrorAs(t, diag.Errors()[0], &projErr)
	assert.Equal(t, "broken", projErr.Projection)
	assert.Equal(t, []string{"nickname", "age"}, projErr.Missing)
	assert.ErrorIs(t, diag.Errors()[0], ErrProjectionField)

	// The failed table produces nothing; the healthy one still does.
	require.Len(t, sets, 1)
	assert.Equal(t, "Post", sets[0].Entity)
}

func TestDeriveUnresolvedReference(t *testing.T) {
	posts := schema.Table("posts",
		schema.Int64("id").Identity(),
		schema.Ref("author_id", "ghosts"),
	).WithRepository()

	sets, diag := deriveTables(t, &Config{}, posts, usersBuilder())

	require.True(t, diag.HasErrors())
	var unresolved *UnresolvedTargetError
	require.ErrorAs(t, diag.Errors()[0], &unresolved)
	assert.Equal(t, "ghosts", unresolved.Target)
	assert.ErrorIs(t, diag.Errors()[0], ErrUnresolvedTarget)

	require.Len(t, sets, 1)
	assert.Equal(t, "User", sets[0].Entity)
}

func TestDeriveUnresolvedAfterRemove(t *testing.T) {
	diag := NewDiagnostics()
	reg := NewRegistry(loadTables(t, usersBuilder(), postsBuilder()), diag)
	require.False(t, diag.HasErrors())

	// First pass derives both tables.
	sets := Derive(reg, &Config{}, diag)
	require.Len(t, sets, 2)
	require.False(t, diag.HasErrors())

	// Removing the target between passes turns the resolved reference
	// into a hard fault on the next derivation.
	reg.Remove("users")
	diag = NewDiagnostics()
	sets = Derive(reg, &Config{}, diag)

	assert.Empty(t, sets)
	require.True(t, diag.HasErrors())
	assert.True(t, IsUnresolvedTargetError(diag.Errors()[0]))
	assert.True(t, diag.Failed("posts"))
}

func TestDeriveNameCollision(t *testing.T) {
	// Both declarations derive the entity name "UserAccount".
	a := schema.Table("user_account", schema.Int64("id").Identity())
	b := schema.Table("UserAccounts", schema.Int64("id").Identity())
	c := usersBuilder()

	sets, diag := deriveTables(t, &Config{}, a, b, c)

	require.True(t, diag.HasErrors())
	var collision *NameCollisionError
	require.ErrorAs(t, diag.Errors()[0], &collision)
	assert.Equal(t, "UserAccount", collision.Name)
	assert.Equal(t, []string{"UserAccounts", "user_account"}, collision.Tables)
	assert.ErrorIs(t, diag.Errors()[0], ErrNameCollision)

	// Both colliding declarations fail; the unrelated table continues.
	assert.True(t, diag.Failed("user_account"))
	assert.True(t, diag.Failed("UserAccounts"))
	require.Len(t, sets, 1)
	assert.Equal(t, "User", sets[0].Entity)
}

func TestDeriveEmptyColumnSetWarns(t *testing.T) {
	empty := schema.Table("audit_marks")

	sets, diag := deriveTables(t, &Config{}, empty)

	assert.False(t, diag.HasErrors())
	require.Len(t, diag.Warnings(), 1)
	assert.ErrorIs(t, diag.Warnings()[0], ErrEmptyColumnSet)

	// The table still derives, with empty shapes.
	require.Len(t, sets, 1)
	assert.Empty(t, sets[0].CreateDto.Fields)
	assert.Empty(t, sets[0].FullDto.Fields)
}

func TestDeriveRejectsViews(t *testing.T) {
	view := schema.View("active_users", schema.Int64("id"))

	sets, diag := deriveTables(t, &Config{}, view, usersBuilder())

	require.Len(t, diag.Errors(), 1)
	err := diag.Errors()[0]
	assert.True(t, IsInvalidTargetKindError(err))
	assert.Contains(t, err.Error(), `"active_users"`)
	assert.Contains(t, err.Error(), "view")
	assert.True(t, diag.Failed("active_users"))

	// The healthy table still derives its full set.
	require.Len(t, sets, 1)
	assert.Equal(t, "User", sets[0].Entity)
}

func TestDeriveDeterministic(t *testing.T) {
	build := func() ([]*ArtifactSet, *Diagnostics) {
		return deriveTables(t, &Config{Serialization: true},
			usersBuilder().Projection(schema.Projection("user_summary", "id", "name").WithUpdate()),
			postsBuilder(),
		)
	}
	first, diag1 := build()
	second, diag2 := build()

	require.False(t, diag1.HasErrors())
	require.False(t, diag2.HasErrors())
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Entity, second[i].Entity)
		assert.Equal(t, first[i].FullDto.FieldNames(), second[i].FullDto.FieldNames())
		assert.Equal(t, first[i].CreateDto.FieldNames(), second[i].CreateDto.FieldNames())
		assert.Equal(t, first[i].Serialization, second[i].Serialization)
	}
}

func TestDeriveDaoRelations(t *testing.T) {
	sets, diag := deriveTables(t, &Config{}, usersBuilder(), postsBuilder())
	require.False(t, diag.HasErrors())
	require.Len(t, sets, 2)

	post := sets[1]
	require.NotNil(t, post.Dao)
	require.Len(t, post.Dao.Relations, 1)
	rel := post.Dao.Relations[0]
	assert.Equal(t, "LoadUser", rel.Name)
	assert.Equal(t, "author_id", rel.Field.Name)
	assert.Equal(t, "users", rel.Target.Name)
}
